package networks

import "strings"

// TxURL links a transaction on n's block explorer, empty when n has none.
func TxURL(n Network, hash string) string {
	base := n.GetBlockExplorerURL()
	if base == "" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "tx/" + hash
}
