// Package discovery advertises codec control endpoints over mDNS/DNS-SD.
//
// A codec is published under the _vcodec._tcp service type. The instance
// name is the device key. TXT records carry:
//
//	key   device key (required)
//	name  display name
//	model vendor model
//	fw    firmware version
//	caps  comma-separated capability names (dialer, sharing, routing, ...)
//
// Controllers find codecs with a Browser; each advertised instance is
// aggregated across network interfaces into a single CodecService.
package discovery
