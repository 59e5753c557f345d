package xmlio

import (
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"

	"github.com/AmericaMakes/OASIS-Challenge-Baseline-Code-and-Models/pkg/model"
)

// ScanHeader is the per-layer header block of the scan artifact, per
// spec §6.
type ScanHeader struct {
	SchemaVersion     int
	LayerNum          int
	LayerThicknessMM  float64
	AbsoluteHeightMM  float64
	DosingFactor      float64
	BuildDescription  string
}

type scanDoc struct {
	XMLName             xml.Name            `xml:"Layer"`
	Header              xmlScanHeader       `xml:"Header"`
	VelocityProfileList xmlVPList           `xml:"VelocityProfileList"`
	SegmentStyleList    xmlSSList           `xml:"SegmentStyleList"`
	TrajectoryList      xmlTrajList         `xml:"TrajectoryList"`
}

type xmlScanHeader struct {
	SchemaVersion    int    `xml:"SchemaVersion"`
	LayerNum         int    `xml:"LayerNum"`
	LayerThickness   string `xml:"LayerThickness"`
	AbsoluteHeight   string `xml:"AbsoluteHeight"`
	DosingFactor     float64 `xml:"DosingFactor"`
	BuildDescription string `xml:"BuildDescription"`
}

type xmlVPList struct {
	Profiles []xmlVelocityProfile `xml:"VelocityProfile"`
}

type xmlVelocityProfile struct {
	ID             string  `xml:"ID"`
	Velocity       float64 `xml:"Velocity"`
	Mode           string  `xml:"Mode"`
	LaserOnDelay   float64 `xml:"LaserOnDelay"`
	LaserOffDelay  float64 `xml:"LaserOffDelay"`
	JumpDelay      float64 `xml:"JumpDelay"`
	MarkDelay      float64 `xml:"MarkDelay"`
	PolygonDelay   float64 `xml:"PolygonDelay"`
}

type xmlSSList struct {
	Styles []xmlSegmentStyle `xml:"SegmentStyle"`
}

type xmlSegmentStyle struct {
	ID              string        `xml:"ID"`
	VelocityProfileID string      `xml:"VelocityProfileID"`
	LaserMode       string        `xml:"LaserMode,omitempty"`
	Travelers       []xmlTraveler `xml:"Traveler"`
}

type xmlTraveler struct {
	ID        string     `xml:"ID"`
	SyncDelay float64    `xml:"SyncDelay"`
	Power     float64    `xml:"Power"`
	SpotSize  float64    `xml:"SpotSize"`
	Wobble    *xmlWobble `xml:"Wobble"`
}

type xmlWobble struct {
	On       bool    `xml:"On"`
	Freq     float64 `xml:"Freq"`
	Shape    string  `xml:"Shape"`
	TransAmp float64 `xml:"TransAmp"`
	LongAmp  float64 `xml:"LongAmp"`
}

type xmlTrajList struct {
	Trajectories []xmlTrajectory `xml:"Trajectory"`
}

type xmlTrajectory struct {
	TrajectoryID        string    `xml:"TrajectoryID"`
	PathProcessingMode  string    `xml:"PathProcessingMode"`
	Paths               []xmlPath `xml:"Path"`
}

type xmlPath struct {
	Type           string       `xml:"Type"`
	Tag            string       `xml:"Tag"`
	NumSegments    int          `xml:"NumSegments"`
	SkyWritingMode int          `xml:"SkyWritingMode"`
	Start          xmlPoint     `xml:"Start"`
	Segments       []xmlSegment `xml:"Segment"`
}

type xmlPoint struct {
	X string `xml:"X"`
	Y string `xml:"Y"`
}

type xmlSegment struct {
	SegStyle string   `xml:"SegStyle"`
	End      xmlPoint `xml:"End"`
}

// idAssignment resolves the wire-format ID for a velocity profile or
// segment style, per spec §6: when integerize is requested, only the
// entries actually referenced by this layer's trajectories are
// renumbered 1-based, in ascending original insertion order (the
// IntID config.Assemble stamped in table-load order); otherwise the
// original string ID passes through unchanged.
func idAssignment(usedIntIDs map[string]int, integerize bool) map[string]string {
	type pair struct {
		id    string
		intID int
	}
	pairs := make([]pair, 0, len(usedIntIDs))
	for id, n := range usedIntIDs {
		pairs = append(pairs, pair{id, n})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].intID < pairs[j].intID })

	out := make(map[string]string, len(pairs))
	for i, p := range pairs {
		if integerize {
			out[p.id] = strconv.Itoa(i + 1)
		} else {
			out[p.id] = p.id
		}
	}
	return out
}

// usedStyleAndVelocityIDs walks every path's segments across trajs and
// collects the referenced segment-style IDs and, transitively, the
// velocity-profile IDs those styles reference.
func usedStyleAndVelocityIDs(trajs []model.Trajectory, styles map[string]model.SegmentStyle) (usedStyles, usedVelocities map[string]int) {
	usedStyles = map[string]int{}
	usedVelocities = map[string]int{}
	for _, t := range trajs {
		for _, p := range t.Paths {
			for _, s := range p.Segments {
				if s.Style == "" {
					continue
				}
				style, ok := styles[s.Style]
				if !ok {
					continue
				}
				usedStyles[style.ID] = style.IntID
				if style.VelocityProfile != "" {
					usedVelocities[style.VelocityProfile] = 0 // filled below
				}
			}
		}
	}
	return usedStyles, usedVelocities
}

// WriteScan encodes one layer's scan artifact, per spec §6: header,
// the used-only velocity-profile and segment-style lists, and the
// trajectory list in ascending-number, insertion, contour-then-hatch
// order (already guaranteed by internal/trajectory and
// internal/layerpipeline).
func WriteScan(w io.Writer, header ScanHeader, velocityProfiles map[string]model.VelocityProfile, segmentStyles map[string]model.SegmentStyle, trajs []model.Trajectory, integerize bool) error {
	usedStyles, usedVelocitiesSeed := usedStyleAndVelocityIDs(trajs, segmentStyles)
	usedVelocities := map[string]int{}
	for id := range usedVelocitiesSeed {
		if vp, ok := velocityProfiles[id]; ok {
			usedVelocities[id] = vp.IntID
		}
	}

	styleIDs := idAssignment(usedStyles, integerize)
	velocityIDs := idAssignment(usedVelocities, integerize)

	doc := scanDoc{
		Header: xmlScanHeader{
			SchemaVersion:    header.SchemaVersion,
			LayerNum:         header.LayerNum,
			LayerThickness:   formatCoord(header.LayerThicknessMM, 6),
			AbsoluteHeight:   formatCoord(header.AbsoluteHeightMM, 6),
			DosingFactor:     header.DosingFactor,
			BuildDescription: header.BuildDescription,
		},
	}

	// Emit velocity profiles/segment styles in the same ascending
	// original-order sequence idAssignment used, so the emitted list
	// order matches the assigned integer IDs when integerize is set.
	orderedVelocities := orderByAssignedID(usedVelocities, velocityIDs)
	for _, id := range orderedVelocities {
		vp := velocityProfiles[id]
		doc.VelocityProfileList.Profiles = append(doc.VelocityProfileList.Profiles, xmlVelocityProfile{
			ID:            velocityIDs[id],
			Velocity:      vp.Velocity,
			LaserOnDelay:  vp.LaserOnMS,
			LaserOffDelay: vp.LaserOffMS,
			JumpDelay:     vp.JumpMS,
			MarkDelay:     vp.MarkMS,
			PolygonDelay:  vp.PolygonMS,
		})
	}

	orderedStyles := orderByAssignedID(usedStyles, styleIDs)
	for _, id := range orderedStyles {
		ss := segmentStyles[id]
		xs := xmlSegmentStyle{
			ID:                styleIDs[id],
			VelocityProfileID: velocityIDs[ss.VelocityProfile],
			LaserMode:         ss.LaserMode,
			Travelers:         []xmlTraveler{toXMLTraveler(ss.Lead)},
		}
		if ss.Trail != nil {
			xs.Travelers = append(xs.Travelers, toXMLTraveler(*ss.Trail))
		}
		doc.SegmentStyleList.Styles = append(doc.SegmentStyleList.Styles, xs)
	}

	for _, t := range trajs {
		xt := xmlTrajectory{
			TrajectoryID:       strconv.Itoa(t.Number),
			PathProcessingMode: t.Mode.String(),
		}
		for _, p := range t.Paths {
			if len(p.Segments) == 0 {
				continue
			}
			xp := xmlPath{
				Type:           p.Type.String(),
				Tag:            p.Tag,
				NumSegments:    len(p.Segments),
				SkyWritingMode: p.Skywriting,
				Start:          xmlPoint{X: formatCoord(p.Segments[0].Start.X, 3), Y: formatCoord(p.Segments[0].Start.Y, 3)},
			}
			for _, s := range p.Segments {
				xp.Segments = append(xp.Segments, xmlSegment{
					SegStyle: styleIDs[s.Style],
					End:      xmlPoint{X: formatCoord(s.End.X, 3), Y: formatCoord(s.End.Y, 3)},
				})
			}
			xt.Paths = append(xt.Paths, xp)
		}
		doc.TrajectoryList.Trajectories = append(doc.TrajectoryList.Trajectories, xt)
	}

	return encode(w, doc)
}

// MarshalScan is a byte-slice convenience wrapper around WriteScan.
func MarshalScan(header ScanHeader, velocityProfiles map[string]model.VelocityProfile, segmentStyles map[string]model.SegmentStyle, trajs []model.Trajectory, integerize bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteScan(&buf, header, velocityProfiles, segmentStyles, trajs, integerize); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toXMLTraveler(t model.Traveler) xmlTraveler {
	xt := xmlTraveler{ID: t.ID, SyncDelay: t.SyncMS, Power: t.PowerW, SpotSize: t.SpotSize}
	if t.Wobble != nil {
		xt.Wobble = &xmlWobble{On: t.Wobble.On, Freq: t.Wobble.FreqHz, Shape: t.Wobble.Shape, TransAmp: t.Wobble.TransAmp, LongAmp: t.Wobble.LongAmp}
	}
	return xt
}

func orderByAssignedID(used map[string]int, assigned map[string]string) []string {
	ids := make([]string, 0, len(used))
	for id := range used {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return used[ids[i]] < used[ids[j]] })
	return ids
}
