package xmlio

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

type layerDoc struct {
	XMLName    xml.Name      `xml:"Layer"`
	Thickness  float64       `xml:"Thickness"`
	VertexList xmlVertexList `xml:"VertexList"`
	Slice      xmlSlice      `xml:"Slice"`
}

type xmlVertexList struct {
	Vertices []xmlVertex `xml:"Vertex"`
}

type xmlVertex struct {
	X           string          `xml:"X"`
	Y           string          `xml:"Y"`
	CoordSystem *xmlCoordSystem `xml:"Co-ordinate_system"`
}

// xmlCoordSystem is an always-empty marker element; its mere presence
// on a vertex is the signal spec §6 describes, not its content.
type xmlCoordSystem struct{}

type xmlSlice struct {
	Regions []xmlRegion `xml:"Region"`
}

type xmlRegion struct {
	Tag         string    `xml:"Tag"`
	ContourTraj int       `xml:"contourTraj"`
	HatchTraj   int       `xml:"hatchTraj"`
	Type        string    `xml:"Type"`
	Edges       []xmlEdge `xml:"Edge"`
}

type xmlEdge struct {
	Start  int       `xml:"Start"`
	End    int       `xml:"End"`
	Normal xmlNormal `xml:"Normal"`
}

type xmlNormal struct {
	Nx float64 `xml:"Nx"`
	Ny float64 `xml:"Ny"`
	Nz float64 `xml:"Nz"`
}

// WriteLayer encodes layer per spec §6's Layer XML contract: 6-decimal
// vertex coordinates, 1-based edge indices, the coordinate-system
// child gated by ForceCoordSystemPerVertex.
func WriteLayer(w io.Writer, layer model.Layer) error {
	doc := layerDoc{Thickness: layer.Thickness}
	doc.VertexList.Vertices = make([]xmlVertex, len(layer.Vertices))
	for i, v := range layer.Vertices {
		xv := xmlVertex{X: formatCoord(v.X, 6), Y: formatCoord(v.Y, 6)}
		if i == 0 || ForceCoordSystemPerVertex {
			xv.CoordSystem = &xmlCoordSystem{}
		}
		doc.VertexList.Vertices[i] = xv
	}
	for _, r := range layer.Slice.Regions {
		xr := xmlRegion{Tag: r.Tag, ContourTraj: r.ContourTraj, HatchTraj: r.HatchTraj, Type: r.Type.String()}
		xr.Edges = make([]xmlEdge, len(r.Edges))
		for i, e := range r.Edges {
			// 1-based indices into VertexList, per spec §6.
			xr.Edges[i] = xmlEdge{Start: e.Start + 1, End: e.End + 1}
		}
		doc.Slice.Regions = append(doc.Slice.Regions, xr)
	}
	return encode(w, doc)
}

// MarshalLayer is a byte-slice convenience wrapper around WriteLayer.
func MarshalLayer(layer model.Layer) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLayer(&buf, layer); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LayerInfo is one entry of the layer header artifact's Layer_info
// sequence, per spec §6.
type LayerInfo struct {
	ZHeight      float64
	LayerFilename string
}

type layerHeaderDoc struct {
	XMLName    xml.Name         `xml:"LayerHeader"`
	LayerCount int              `xml:"LayerCount"`
	Infos      []xmlLayerInfo   `xml:"Layer_info"`
}

type xmlLayerInfo struct {
	ZHeight      string `xml:"z_Height"`
	LayerFilename string `xml:"Layer_filename"`
}

// WriteLayerHeader encodes the layer header artifact: total layer
// count plus a sequence of (z height, filename) entries, per spec §6.
func WriteLayerHeader(w io.Writer, totalLayers int, infos []LayerInfo) error {
	doc := layerHeaderDoc{LayerCount: totalLayers}
	for _, li := range infos {
		doc.Infos = append(doc.Infos, xmlLayerInfo{ZHeight: formatCoord(li.ZHeight, 6), LayerFilename: li.LayerFilename})
	}
	return encode(w, doc)
}

// MarshalLayerHeader is a byte-slice convenience wrapper around
// WriteLayerHeader.
func MarshalLayerHeader(totalLayers int, infos []LayerInfo) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLayerHeader(&buf, totalLayers, infos); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
