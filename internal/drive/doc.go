// Package drive mounts a user's storage as a local directory tree.
//
// Mount starts a goroutine that owns the mount for its whole life. The
// returned Drive is the only handle on it: WaitUntilMounted blocks until the
// mount is usable, Unmount asks the loop to flush and exit, and
// WaitUntilUnmounted joins it.
package drive
