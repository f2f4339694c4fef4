//go:build !linux

package actor

// pinToCPU is a no-op on platforms without a supported affinity syscall,
// matching akio/src/dispatcher.rs's fallback when core_affinity has no
// #[cfg(target_os = "linux")] implementation for the host platform.
func pinToCPU(index int) {}
