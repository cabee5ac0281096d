package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/bluewater-labs/ecoindex/internal/engine"
	"github.com/bluewater-labs/ecoindex/internal/model"
	"github.com/bluewater-labs/ecoindex/internal/process"
	"github.com/bluewater-labs/ecoindex/internal/raster"
)

// handleComputeIndicators runs the indicator engine on a posted sample and
// returns the mutated record.
func (s *Server) handleComputeIndicators(w http.ResponseWriter, r *http.Request) {
	var sample model.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, eris.Wrap(model.ErrInvalidInput, "invalid request body"))
		return
	}

	if err := sample.Validate(); err != nil {
		writeError(w, err)
		return
	}
	if err := engine.Compute(&sample, s.defaults); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

// handleRasterSample accepts a multipart GeoTIFF upload plus an optional
// stride field and returns the sampled feature collection.
func (s *Server) handleRasterSample(w http.ResponseWriter, r *http.Request) {
	if !s.uploads.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "upload rate exceeded"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, eris.Wrap(model.ErrInvalidInput, "invalid multipart body"))
		return
	}

	stride := s.cfg.Raster.Stride
	if v := r.FormValue("stride"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, eris.Wrapf(model.ErrInvalidInput, "bad stride %q", v))
			return
		}
		stride = n
	}

	file, _, err := r.FormFile("raster_file")
	if err != nil {
		writeError(w, eris.Wrap(model.ErrInvalidInput, "raster_file is required"))
		return
	}
	defer file.Close()

	// GDAL wants a path, so spool the upload to a temp file.
	tmp, err := os.CreateTemp("", "upload-*.tif")
	if err != nil {
		writeError(w, eris.Wrap(err, "server: create temp raster"))
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, eris.Wrap(err, "server: spool upload"))
		return
	}
	if err := tmp.Close(); err != nil {
		writeError(w, eris.Wrap(err, "server: close temp raster"))
		return
	}

	s.sampleRaster(w, r, tmp.Name(), stride)
}

// handleDatapoints samples the configured demo raster at the default stride.
func (s *Server) handleDatapoints(w http.ResponseWriter, r *http.Request) {
	s.sampleRaster(w, r, s.cfg.Raster.DemoPath, s.cfg.Raster.Stride)
}

func (s *Server) sampleRaster(w http.ResponseWriter, r *http.Request, path string, stride int) {
	sampler, err := raster.NewSampler(stride, s.defaults)
	if err != nil {
		writeError(w, err)
		return
	}

	src, err := raster.OpenGeoTIFF(path, s.cfg.Raster.Bands)
	if err != nil {
		writeError(w, err)
		return
	}
	defer src.Close()

	fc, err := sampler.Sample(r.Context(), src)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fc)
}

// handleAddSample appends a raw sample to the store, reprocesses the batch
// and returns the processed list.
func (s *Server) handleAddSample(w http.ResponseWriter, r *http.Request) {
	var sample model.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, eris.Wrap(model.ErrInvalidInput, "invalid request body"))
		return
	}
	if sample.LocationID == "" {
		writeError(w, eris.Wrap(model.ErrInvalidInput, "location_id is required"))
		return
	}

	if err := s.store.AddSample(r.Context(), sample); err != nil {
		writeError(w, err)
		return
	}

	ps, err := process.Run(r.Context(), s.store)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// handleListSamples reprocesses and returns the stored batch.
func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request) {
	ps, err := process.Run(r.Context(), s.store)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
