package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/couchcryptid/lightning-report-etl/internal/domain"
)

// Heat layer options shared by every heat map.
const (
	HeatMinOpacity = 0.2
	HeatMax        = 0.8
	HeatRadius     = 15
	HeatBlur       = 10
)

// View centres an HTML map.
type View struct {
	Lat, Lon float64
	Zoom     float64
}

// HeatMap is a Leaflet page with a single heat layer.
type HeatMap struct {
	Title    string
	View     View
	Points   [][2]float64
	Boundary json.RawMessage // GeoJSON overlay; nil draws none
}

// DotLayer is one year's strikes drawn as coloured circle markers.
type DotLayer struct {
	Name   string
	Color  string
	Points [][2]float64
}

// DotsMap is a Leaflet page with one toggleable marker layer per year.
type DotsMap struct {
	Title    string
	View     View
	Layers   []DotLayer
	Outline  *domain.Region // optional rectangle, e.g. a sub-region
	Boundary json.RawMessage
}

type heatOptions struct {
	MinOpacity float64 `json:"minOpacity"`
	Max        float64 `json:"max"`
	Radius     int     `json:"radius"`
	Blur       int     `json:"blur"`
}

type rect struct {
	South, West, North, East float64
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
{{- if .Heat}}
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
{{- end}}
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map").setView([{{.View.Lat}}, {{.View.Lon}}], {{.View.Zoom}});
L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
{{- if .Boundary}}
L.geoJSON({{.Boundary}}, {style: {color: "black", weight: 2, fill: false}}).addTo(map);
{{- end}}
{{- if .Heat}}
L.heatLayer({{.Heat.Points}}, {{.Heat.Options}}).addTo(map);
{{- end}}
{{- if .Layers}}
var overlays = {};
{{- range .Layers}}
(function () {
  var group = L.layerGroup();
  var color = {{.Color}};
  {{.Points}}.forEach(function (p) {
    L.circleMarker(p, {radius: 2, color: color, fillColor: color, fillOpacity: 0.8, weight: 0}).addTo(group);
  });
  group.addTo(map);
  overlays[{{.Name}}] = group;
})();
{{- end}}
L.control.layers(null, overlays, {collapsed: false}).addTo(map);
{{- end}}
{{- with .Rect}}
L.rectangle([[{{.South}}, {{.West}}], [{{.North}}, {{.East}}]], {color: "black", weight: 1, fill: false}).addTo(map);
{{- end}}
</script>
</body>
</html>
`))

type heatData struct {
	Points  [][2]float64
	Options heatOptions
}

type pageData struct {
	Title    string
	View     View
	Boundary json.RawMessage
	Heat     *heatData
	Layers   []DotLayer
	Rect     *rect
}

// WriteHeatMap renders m as a standalone HTML page.
func WriteHeatMap(w io.Writer, m HeatMap) error {
	points := m.Points
	if points == nil {
		points = [][2]float64{}
	}
	return writePage(w, pageData{
		Title:    m.Title,
		View:     m.View,
		Boundary: m.Boundary,
		Heat: &heatData{
			Points: points,
			Options: heatOptions{
				MinOpacity: HeatMinOpacity,
				Max:        HeatMax,
				Radius:     HeatRadius,
				Blur:       HeatBlur,
			},
		},
	})
}

// WriteDotsMap renders m as a standalone HTML page.
func WriteDotsMap(w io.Writer, m DotsMap) error {
	layers := make([]DotLayer, len(m.Layers))
	for i, l := range m.Layers {
		if l.Points == nil {
			l.Points = [][2]float64{}
		}
		layers[i] = l
	}

	data := pageData{
		Title:    m.Title,
		View:     m.View,
		Boundary: m.Boundary,
		Layers:   layers,
	}
	if m.Outline != nil {
		data.Rect = &rect{South: m.Outline.LatMin, West: m.Outline.LonMin, North: m.Outline.LatMax, East: m.Outline.LonMax}
	}
	return writePage(w, data)
}

func writePage(w io.Writer, data pageData) error {
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render %q: %w", data.Title, err)
	}
	return nil
}
