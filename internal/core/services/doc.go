// Package services implements the application's use cases, wiring the
// driven ports together behind the driving ports.
package services
