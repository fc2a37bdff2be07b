package topology

import (
	"fmt"

	"gonum.org/v1/gonum/graph/formats/gml"

	"github.com/monerosim/monerosim/internal/simerr"
)

// rawNode is one GML node's relevant attributes, after lookup from the
// parsed AST's generic key/value list (spec.md §6: node attributes `AS`,
// `region`, `bandwidth_down_kbps`, `bandwidth_up_kbps`).
type rawNode struct {
	ID               int64
	AS               int
	Region           string
	BandwidthDownSet bool
	BandwidthDown    float64
	BandwidthUpSet   bool
	BandwidthUp      float64
}

type rawEdge struct {
	From, To    int64
	LatencyMs   float64
	PacketLoss  float64
	BandwidthKb float64
}

// parseGML decodes the GML document and extracts the node/edge attribute
// sets the Topology & Addressing stage needs (spec.md §4.4, §6).
func parseGML(data []byte) ([]rawNode, []rawEdge, error) {
	doc, err := gml.Unmarshal(data)
	if err != nil {
		return nil, nil, simerr.New(simerr.Addressing, "parsing GML network file").WithCause(err)
	}
	if len(doc.Graphs) == 0 {
		return nil, nil, simerr.New(simerr.Addressing, "GML document has no graph")
	}
	g := doc.Graphs[0]

	nodes := make([]rawNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		rn := rawNode{ID: n.ID}
		for _, kv := range n.Attributes {
			switch kv.Key {
			case "AS":
				rn.AS = toInt(kv.Value)
			case "region":
				rn.Region = toStr(kv.Value)
			case "bandwidth_down_kbps":
				rn.BandwidthDown, rn.BandwidthDownSet = toFloat(kv.Value), true
			case "bandwidth_up_kbps":
				rn.BandwidthUp, rn.BandwidthUpSet = toFloat(kv.Value), true
			}
		}
		nodes = append(nodes, rn)
	}

	edges := make([]rawEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		re := rawEdge{From: e.Source, To: e.Target}
		for _, kv := range e.Attributes {
			switch kv.Key {
			case "latency_ms":
				re.LatencyMs = toFloat(kv.Value)
			case "packet_loss":
				re.PacketLoss = toFloat(kv.Value)
			case "bandwidth_kbps":
				re.BandwidthKb = toFloat(kv.Value)
			}
		}
		edges = append(edges, re)
	}

	if len(nodes) == 0 {
		return nil, nil, simerr.New(simerr.Addressing, "GML graph has no nodes")
	}
	return nodes, edges, nil
}

func toInt(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		var out int
		fmt.Sscanf(t, "%d", &out)
		return out
	default:
		return 0
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		var out float64
		fmt.Sscanf(t, "%g", &out)
		return out
	default:
		return 0
	}
}

func toStr(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
