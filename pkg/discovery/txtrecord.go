package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// TXTRecordMap represents TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeCodecTXT builds the TXT records for a codec.
func EncodeCodecTXT(info *CodecInfo) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyDeviceKey: info.Key,
	}
	if info.Name != "" {
		txt[TXTKeyName] = info.Name
	}
	if info.Model != "" {
		txt[TXTKeyModel] = info.Model
	}
	if info.Firmware != "" {
		txt[TXTKeyFirmware] = info.Firmware
	}
	if len(info.Capabilities) > 0 {
		txt[TXTKeyCapabilities] = strings.Join(info.Capabilities, ",")
	}
	return txt
}

// DecodeCodecTXT parses codec TXT records.
func DecodeCodecTXT(txt TXTRecordMap) (*CodecInfo, error) {
	key, ok := txt[TXTKeyDeviceKey]
	if !ok || key == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDeviceKey)
	}

	info := &CodecInfo{
		Key:      key,
		Name:     txt[TXTKeyName],
		Model:    txt[TXTKeyModel],
		Firmware: txt[TXTKeyFirmware],
	}
	if caps := txt[TXTKeyCapabilities]; caps != "" {
		for _, c := range strings.Split(caps, ",") {
			c = strings.TrimSpace(c)
			if c == "" {
				return nil, fmt.Errorf("%w: empty capability in %q", ErrInvalidTXTRecord, caps)
			}
			info.Capabilities = append(info.Capabilities, c)
		}
	}
	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, found := strings.Cut(s, "=")
		if found {
			txt[k] = v
		} else if k != "" {
			// Key without value (boolean flag)
			txt[k] = ""
		}
	}
	return txt
}

// ValidateTXTSize checks the encoded size against MaxTXTRecordSize.
// Each string costs its length plus one length byte.
func ValidateTXTSize(strs []string) error {
	size := 0
	for _, s := range strs {
		size += len(s) + 1
	}
	if size > MaxTXTRecordSize {
		return fmt.Errorf("%w: %d", ErrTXTTooLarge, size)
	}
	return nil
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
