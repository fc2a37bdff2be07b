package planemit

import "gopkg.in/yaml.v3"

// kv is one ordered mapping entry, built directly into a yaml.Node
// rather than via a Go map, so key order is exactly what the caller
// wrote rather than whatever gopkg.in/yaml.v3 chooses for a map
// (spec.md §6 "Deterministic key ordering").
type kv struct {
	Key   string
	Value *yaml.Node
}

func scalar(v interface{}) *yaml.Node {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		n.Kind = yaml.ScalarNode
		n.Tag = "!!str"
		n.Value = ""
	}
	return n
}

func mapping(pairs ...kv) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range pairs {
		n.Content = append(n.Content, scalar(p.Key), p.Value)
	}
	return n
}

func sequence(items ...*yaml.Node) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	n.Content = append(n.Content, items...)
	return n
}

func strSeq(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, s := range items {
		n.Content = append(n.Content, scalar(s))
	}
	return n
}
