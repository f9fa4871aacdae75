/*
Package session coordinates concurrent access to debot sessions.

Locker serializes front ends working on the same session id inside one
process and, when given a distributed ports.SessionLocker such as the redis
one, across replicas as well. Local locks are reference counted and dropped
once nobody holds or waits for them.
*/
package session
