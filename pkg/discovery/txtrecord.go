package discovery

import (
	"fmt"
	"strings"
)

// TXTRecordMap holds decoded TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeAnnounceTXT creates the TXT records for an endpoint announcement.
func EncodeAnnounceTXT(info *AnnounceInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	path := info.Path
	if path == "" {
		path = "/"
	}
	txt[TXTKeyPath] = path

	if len(info.Capabilities) > 0 {
		txt[TXTKeyCaps] = strings.Join(info.Capabilities, ",")
	}

	return txt
}

// DecodeAnnounceTXT parses the TXT records of an endpoint announcement.
// A missing path defaults to "/"; capability tokens are validated.
func DecodeAnnounceTXT(txt TXTRecordMap) (path string, caps []string, err error) {
	path = txt[TXTKeyPath]
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	capsStr, ok := txt[TXTKeyCaps]
	if !ok || capsStr == "" {
		return path, nil, nil
	}
	for _, token := range strings.Split(capsStr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if err := ValidateCapability(token); err != nil {
			return "", nil, err
		}
		caps = append(caps, token)
	}
	return path, caps, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, the format mDNS libraries use.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a
// TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Bare key, a boolean flag
			txt[parts[0]] = ""
		}
	}
	return txt
}

// TXTSize returns the wire size of the TXT records: each "key=value"
// string costs its length plus one length byte.
func TXTSize(txt TXTRecordMap) int {
	size := 0
	for k, v := range txt {
		size += len(k) + 1 + len(v) + 1
	}
	return size
}

// ValidateInstanceName checks that a name is usable as an mDNS instance
// name: a non-empty DNS label without dots.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	if strings.ContainsAny(name, ".\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidInstanceName, name)
	}
	return nil
}

// ValidateCapability checks a capability token: 1 to MaxCapabilityLen
// characters from [A-Za-z0-9-].
func ValidateCapability(token string) error {
	if token == "" || len(token) > MaxCapabilityLen {
		return fmt.Errorf("%w: %q", ErrInvalidCapability, token)
	}
	for _, r := range token {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidCapability, token)
		}
	}
	return nil
}
