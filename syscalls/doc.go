// Package syscalls resolves system call names, numbers and declarations
// through the host's syscall table.
//
// The host follows strace for numbers it has no name for: Name(1337)
// returns "syscall_539" rather than failing.
package syscalls
