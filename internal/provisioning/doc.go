// Package provisioning sequences the system-setup steps for a KENKI
// image: preflight checks, package installation, assistant
// configuration, model fetch, service registration, and shell
// composition.
//
// Execution is strictly sequential. Steps mutate shared system state
// (the package database, the config file, the unit directory), so no
// two steps ever run concurrently and cancellation is honored only at
// step boundaries, never inside a package transaction or an in-flight
// file write.
package provisioning
