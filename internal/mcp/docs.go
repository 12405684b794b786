package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/rerx/internal/domain/quadrant"
	"github.com/rpggio/rerx/internal/domain/score"
)

const serverInstructions = `rerx scores the regenerative health of a system on two axes and tracks it over time.

- Re (structural potential): reRaw = (L*I*F*E)/(X+Fg+Omega), plotted as reLog = log10(reRaw+1).
- Rx (realized outcomes): mean of indicator values, plotted as rxScaled = rx*0.552.
- Both axes share the range [0, 5.52]; the midpoint 2.76 splits them into four quadrants.

Workflow:
1) list_projects to orient; the active project is the default target of snapshot tools.
2) compute_scores to try metric sets without saving.
3) save_snapshot to freeze a time point; update_snapshot / delete_snapshot to correct history.
4) get_history and get_forecast to follow the trajectory.

Docs:
- rerx://docs/factors
- rerx://docs/quadrants
- rerx://docs/forecast
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

func factorsDoc() string {
	var b strings.Builder
	b.WriteString("# Factors\n\nEach factor is scored from 0.01 to 10 (default 5).\n\n")
	b.WriteString("| Factor | Name | Role | Description |\n|---|---|---|---|\n")
	regenerative := map[score.Factor]bool{}
	for _, f := range score.RegenerativeFactors() {
		regenerative[f] = true
	}
	for _, d := range score.Definitions() {
		role := "pressure (denominator)"
		if regenerative[d.Factor] {
			role = "regenerative (numerator)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", d.Symbol, d.Name, role, d.Description)
	}
	b.WriteString("\nA zero denominator yields an unbounded Re; inputs are clamped so saved snapshots stay finite.\n")
	return b.String()
}

func quadrantsDoc() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Quadrants\n\nBoth axes run from 0 to %.2f and split at %.2f. ", quadrant.Bound, quadrant.Midpoint)
	b.WriteString("Points exactly on a midline belong to the lower or left region.\n\n")
	b.WriteString("| Quadrant | Re | Rx | Meaning |\n|---|---|---|---|\n")
	for _, r := range quadrant.Regions() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.Label, level(r.HighX), level(r.HighY), r.Label.Description())
	}
	return b.String()
}

func level(high bool) string {
	if high {
		return "high"
	}
	return "low"
}

const forecastDoc = `# Forecast

The forecast extends the displacement between the two most recent snapshots (by timestamp):

1. v = P(n) - P(n-1) using (reLog, rxScaled).
2. The forecast point is P(n) + v, clamped into [0, 5.52] on both axes.
3. The vector endpoint continues from the forecast point along v until the first axis boundary.

With fewer than two snapshots there is no forecast. A zero vector keeps the endpoint at the forecast point.
This is a deterministic extrapolation and carries no statistical confidence.
`

func docResources() []docResource {
	return []docResource{
		{
			URI:         "rerx://docs/factors",
			Name:        "docs_factors",
			Title:       "Re factors",
			Description: "The seven factors of the Re score and their roles.",
			Content:     factorsDoc(),
		},
		{
			URI:         "rerx://docs/quadrants",
			Name:        "docs_quadrants",
			Title:       "Quadrants",
			Description: "How (Re, Rx) points are classified.",
			Content:     quadrantsDoc(),
		},
		{
			URI:         "rerx://docs/forecast",
			Name:        "docs_forecast",
			Title:       "Forecast",
			Description: "How the next point is extrapolated.",
			Content:     forecastDoc,
		},
	}
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources() {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
