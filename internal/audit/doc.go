// Package audit records an append-only trail of catalog changes and
// actuator commands in the audit_logs table.
//
// Provisioning writes a create entry for every device, sensor and actuator
// it adds. The command handler writes a command entry for every command it
// receives, accepted or not.
package audit
