package networks

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// GetNodes returns the node urls of n keyed by node name. A non empty
// GetNodeVariableName env var adds a "custom-node" entry.
func GetNodes(n Network) (map[string]string, error) {
	nodes := map[string]string{}
	for name, url := range n.GetDefaultNodes() {
		nodes[name] = url
	}
	if v := n.GetNodeVariableName(); v != "" {
		customNode := strings.Trim(os.Getenv(v), " ")
		if customNode != "" {
			nodes["custom-node"] = customNode
		}
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("network %s has no nodes configured", n.GetName())
	}
	return nodes, nil
}

func sortedNodeURLs(nodes map[string]string) []string {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, nodes[name])
	}
	return urls
}
