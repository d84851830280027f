package cache

import "strings"

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	// GraphKey identifies a parsed outline by its document hash and the
	// options that influence parsing.
	GraphKey(docHash string, opts GraphKeyOpts) string
	// LayoutKey identifies computed positions for a parsed outline.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts holds the parse options that change the resulting tree.
type GraphKeyOpts struct {
	Marker   string `json:"marker"`
	Encoding string `json:"encoding"`
	Strict   bool   `json:"strict"`
	RootID   string `json:"root_id,omitempty"`
}

// LayoutKeyOpts holds the layout options that change node positions.
type LayoutKeyOpts struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Strategy string  `json:"strategy"`
	Title    string  `json:"title,omitempty"`
}

// ArtifactKeyOpts holds the render options that change output bytes.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	ShowIDs  bool    `json:"show_ids,omitempty"`
	Labels   bool    `json:"labels,omitempty"`
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) GraphKey(docHash string, opts GraphKeyOpts) string {
	opts.Encoding = strings.ToLower(opts.Encoding)
	return hashKey("graph", docHash, opts)
}

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	opts.Format = strings.ToLower(opts.Format)
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
