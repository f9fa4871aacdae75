// Package http serves stored debot sessions and the debot context graph as a
// small read-mostly JSON API.
//
//	GET    /sessions         list stored sessions with their position
//	GET    /sessions/{id}    the raw checkpoint
//	DELETE /sessions/{id}    remove a checkpoint
//	GET    /graph            contexts and actions as JSON
//	GET    /graph.mmd        Mermaid flowchart, ?session=<id> highlights a session
package http
