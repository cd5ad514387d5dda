// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

/*
Package supervisor runs the long-lived parts of the serve command under a
suture v4 supervisor tree.

The tree has two layers so a failing snapshot build never takes the HTTP
listener down with it:

	RootSupervisor ("moviebridge")
	├── DataSupervisor ("data-layer")
	│   ├── SnapshotService (builds and refreshes the snapshot)
	│   └── CacheGCService (poster cache value log GC, when posters are enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

While the first build runs, the API answers readiness checks with 503. A
build that fails is retried with suture's backoff; a refresh that fails
keeps the previous snapshot in service.

Supervisor events (start, failure, backoff) are logged through sutureslog,
which writes to the zerolog global logger via logging.NewSlogLogger:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewSnapshotService(build, publish, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err = tree.Serve(ctx)

See the services subpackage for the service wrappers.
*/
package supervisor
