package visualizer

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	"github.com/athapong/kgraph/pkg/graph"
)

const d3Template = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Knowledge Graph</title>
    <script src="https://d3js.org/d3.v7.min.js"></script>
    <style>
        body { margin: 0; font-family: sans-serif; }
        #graph { width: 100%; height: 100vh; background-color: #fafafa; }
        .link { stroke: #999; stroke-opacity: 0.6; }
        .node { stroke: #fff; stroke-width: 1.5px; cursor: grab; }
        .label { font-size: 10px; pointer-events: none; }
        .panel {
            position: absolute; top: 10px; left: 10px;
            background: rgba(255,255,255,0.85); padding: 8px 12px;
            border-radius: 4px;
        }
    </style>
</head>
<body>
    <div id="graph"></div>
    <div class="panel">{{.EntityCount}} entities, {{.RelationshipCount}} relationships</div>
    <script>
        const data = {{.GraphJSON}};

        const svg = d3.select("#graph").append("svg")
            .attr("width", "100%").attr("height", "100%");
        const view = svg.append("g");
        svg.call(d3.zoom().on("zoom", e => view.attr("transform", e.transform)));

        const types = [...new Set(data.nodes.map(n => n.type))];
        const color = d3.scaleOrdinal(d3.schemeCategory10).domain(types);

        const simulation = d3.forceSimulation(data.nodes)
            .force("link", d3.forceLink(data.links).id(n => n.id).distance(90))
            .force("charge", d3.forceManyBody().strength(-250))
            .force("center", d3.forceCenter(window.innerWidth / 2, window.innerHeight / 2));

        const link = view.selectAll("line").data(data.links).join("line")
            .attr("class", "link");
        link.append("title").text(l => l.type);

        const node = view.selectAll("circle").data(data.nodes).join("circle")
            .attr("class", "node").attr("r", 7)
            .attr("fill", n => color(n.type))
            .call(d3.drag()
                .on("start", (e, n) => { if (!e.active) simulation.alphaTarget(0.3).restart(); n.fx = n.x; n.fy = n.y; })
                .on("drag", (e, n) => { n.fx = e.x; n.fy = e.y; })
                .on("end", (e, n) => { if (!e.active) simulation.alphaTarget(0); n.fx = null; n.fy = null; }));
        node.append("title").text(n => n.name + " (" + n.type + ")");

        const label = view.selectAll("text").data(data.nodes).join("text")
            .attr("class", "label").attr("dx", 10).attr("dy", ".35em")
            .text(n => n.name);

        simulation.on("tick", () => {
            link.attr("x1", l => l.source.x).attr("y1", l => l.source.y)
                .attr("x2", l => l.target.x).attr("y2", l => l.target.y);
            node.attr("cx", n => n.x).attr("cy", n => n.y);
            label.attr("x", n => n.x).attr("y", n => n.y);
        });
    </script>
</body>
</html>
`

type d3Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type d3Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// D3Visualizer renders a loaded knowledge graph as a standalone HTML page
// with a D3.js force layout.
type D3Visualizer struct {
	outputPath string
}

// NewD3Visualizer creates a new D3.js visualizer
func NewD3Visualizer(outputPath string) *D3Visualizer {
	return &D3Visualizer{
		outputPath: outputPath,
	}
}

// Visualize writes the HTML page. Dangling relationships are left out: the
// force layout cannot place an edge whose endpoint has no node.
func (v *D3Visualizer) Visualize(g *graph.Graph) error {
	dir := filepath.Dir(v.outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	entities := g.Entities()
	nodes := make([]d3Node, 0, len(entities))
	seen := make(map[string]bool, len(entities))
	for i := range entities {
		if seen[entities[i].ID] {
			continue
		}
		seen[entities[i].ID] = true
		nodes = append(nodes, d3Node{ID: entities[i].ID, Name: entities[i].Name, Type: entities[i].Type})
	}

	relationships := g.Relationships()
	links := make([]d3Link, 0, len(relationships))
	for i := range relationships {
		rel := &relationships[i]
		if _, ok := g.EntityByID(rel.Source); !ok {
			continue
		}
		if _, ok := g.EntityByID(rel.Target); !ok {
			continue
		}
		links = append(links, d3Link{Source: rel.Source, Target: rel.Target, Type: rel.Type})
	}

	payload, err := json.Marshal(map[string]interface{}{
		"nodes": nodes,
		"links": links,
	})
	if err != nil {
		return err
	}

	tmpl, err := template.New("d3").Parse(d3Template)
	if err != nil {
		return err
	}

	data := struct {
		GraphJSON         template.JS
		EntityCount       int
		RelationshipCount int
	}{
		GraphJSON:         template.JS(payload),
		EntityCount:       len(nodes),
		RelationshipCount: len(links),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}

	return os.WriteFile(v.outputPath, buf.Bytes(), 0644)
}
