// Package infra contains technical adapters: grid file loaders, metrics
// exporters, the MQTT publisher and persistent stores. These packages should
// depend only on the interfaces defined in the core packages.
package infra
