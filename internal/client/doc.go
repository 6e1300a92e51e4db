// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync client process.
//
// It wires local storage, the remote adapter, the offline queue and the
// conflict resolver, then runs the sync job, the connectivity prober and the
// reminder scheduler as background workers until the process is stopped.
package client
