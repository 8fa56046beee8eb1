// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

/*
Package supervisor runs the server's long-lived services under a suture v4
supervision tree.

Services that return an error are restarted with suture's failure
threshold and backoff; services that return after their context is
canceled are treated as stopped. Supervisor events (restarts, backoff,
timeouts) are logged through sutureslog, which takes a *slog.Logger; the
server passes logging.NewSlogLogger so those events land in the zerolog
stream.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.Logger()), supervisor.DefaultTreeConfig())
	tree.AddSessionService(services.NewSessionJanitorService(registry, time.Minute, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	err = tree.Serve(ctx)

The services subpackage holds the service wrappers.
*/
package supervisor
