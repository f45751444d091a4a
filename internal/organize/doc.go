// Package organize runs the classifier over a batch of files with a bounded
// worker pool.
//
// A Runner reports through an Observer whose callbacks all arrive on one
// goroutine, so observers need no locking. Cancellation is cooperative: the
// run context is checked each time a worker slot frees up, files already
// handed to a worker always finish, and files never handed out are reported
// as cancelled.
package organize
