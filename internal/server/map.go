package server

import (
	"net/http"
	"strings"
)

// handleMap serves the deck.gl map page. The page fetches /v1/datapoints and
// renders one layer per sampled raster point.
func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	page := strings.ReplaceAll(mapPage, "{{MAPBOX_TOKEN}}", s.cfg.Server.MapboxToken)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

const mapPage = `<!DOCTYPE html>
<html>
<head>
    <title>Environmental Impact Map</title>
    <script src="https://unpkg.com/deck.gl@latest/dist.min.js"></script>
    <script src="https://api.tiles.mapbox.com/mapbox-gl-js/v2.14.1/mapbox-gl.js"></script>
    <link href="https://api.tiles.mapbox.com/mapbox-gl-js/v2.14.1/mapbox-gl.css" rel="stylesheet" />
    <style>
        #tooltip {
            position: absolute;
            background: rgba(0, 0, 0, 0.8);
            color: white;
            padding: 8px;
            border-radius: 4px;
            pointer-events: none;
            display: none;
        }
    </style>
</head>
<body style="margin:0;">
    <div id="map" style="width:100vw; height:100vh;"></div>
    <div id="tooltip"></div>
    <script>
        const {DeckGL, GeoJsonLayer} = deck;
        const map = new mapboxgl.Map({
            container: 'map',
            style: 'mapbox://styles/mapbox/dark-v10',
            center: [-74.006, 40.7128],
            zoom: 10,
            accessToken: '{{MAPBOX_TOKEN}}'
        });

        fetch('/v1/datapoints')
            .then(res => res.json())
            .then(data => {
                new DeckGL({
                    map: map,
                    initialViewState: {longitude: -74.006, latitude: 40.7128, zoom: 10},
                    controller: true,
                    layers: [
                        new GeoJsonLayer({
                            id: 'raster-points',
                            data: data,
                            getPosition: d => d.geometry.coordinates,
                            getFillColor: d => {
                                const bioacc = d.properties.indicators.bioaccumulation_factor || 0;
                                return bioacc > 200 ? [255, 0, 0] : bioacc > 100 ? [255, 165, 0] : [0, 255, 0];
                            },
                            getRadius: d => {
                                const tox = d.properties.indicators.soil_toxicity_index || 0;
                                return Math.min(Math.max(tox * 2, 2), 20);
                            },
                            pickable: true,
                            onHover: ({object, x, y}) => {
                                const tooltip = document.getElementById('tooltip');
                                if (object) {
                                    const props = object.properties;
                                    tooltip.style.display = 'block';
                                    tooltip.style.left = x + 10 + 'px';
                                    tooltip.style.top = y + 10 + 'px';
                                    tooltip.innerHTML =
                                        '<b>Point</b><br>' +
                                        'As: ' + props.concentrations.As.toFixed(3) + ' mg/L<br>' +
                                        'Pb: ' + props.concentrations.Pb.toFixed(3) + ' mg/L<br>' +
                                        'Bioaccumulation: ' + props.indicators.bioaccumulation_factor.toFixed(2) + '<br>' +
                                        'Soil Toxicity: ' + props.indicators.soil_toxicity_index.toFixed(2);
                                } else {
                                    tooltip.style.display = 'none';
                                }
                            }
                        })
                    ]
                });
            });
    </script>
</body>
</html>
`
