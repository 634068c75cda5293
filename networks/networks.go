package networks

import (
	"fmt"
	"strings"
)

// DefaultTarget is the chain every write must happen on unless configured
// otherwise.
var DefaultTarget Network = Mumbai

// Resolve finds a network by name, alternative name or chain id. Chain ids
// may be decimal or 0x prefixed hex.
func Resolve(nameOrID string) (Network, error) {
	nameOrID = strings.TrimSpace(nameOrID)
	if nameOrID == "" {
		return DefaultTarget, nil
	}
	if n, err := GetNetwork(strings.ToLower(nameOrID)); err == nil {
		return n, nil
	}
	id, err := ParseChainID(nameOrID)
	if err != nil {
		return nil, fmt.Errorf("network '%s': %w", nameOrID, ErrNetworkNotFound)
	}
	return GetNetworkByID(id)
}
