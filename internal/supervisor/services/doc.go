// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

/*
Package services provides suture.Service wrappers for the serve command.

Each wrapper turns a component's lifecycle into suture's context-aware
Serve method and implements fmt.Stringer so supervisor events name it.

HTTPServerService:
  - Runs ListenAndServe and shuts the server down gracefully on cancel
  - A listener failure is returned so suture restarts the service

SnapshotService:
  - Builds the recommendation snapshot and publishes it to the API
  - A failed first build is returned for restart with backoff
  - With a refresh interval, rebuilds periodically; a failed refresh keeps
    the previous snapshot

CacheGCService:
  - Periodically reclaims value log space in the poster cache
*/
package services
