package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/EnderRifter/StarSim-sub000/internal/sim"
)

type ExportBody struct {
	Generation uint32     `json:"generation"`
	ID         uint64     `json:"id"`
	Mass       float64    `json:"mass"`
	Position   [3]float64 `json:"position"`
	Velocity   [3]float64 `json:"velocity"`
}

type ExportFrame struct {
	Step   int          `json:"step"`
	Time   float64      `json:"time"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Frames []ExportFrame `json:"frames"`
}

func NewExportData(meta RunMetadata, frames []sim.Frame) ExportData {
	data := ExportData{
		Run:    meta,
		Frames: make([]ExportFrame, len(frames)),
	}
	for i, f := range frames {
		ef := ExportFrame{Step: f.Step, Time: f.Time, Bodies: make([]ExportBody, len(f.Bodies))}
		for j, b := range f.Bodies {
			ef.Bodies[j] = ExportBody{
				Generation: b.Generation(),
				ID:         b.ID(),
				Mass:       b.Mass,
				Position:   [3]float64{b.Position.X(), b.Position.Y(), b.Position.Z()},
				Velocity:   [3]float64{b.Velocity.X(), b.Velocity.Y(), b.Velocity.Z()},
			}
		}
		data.Frames[i] = ef
	}
	return data
}

func ExportJSON(path string, meta RunMetadata, frames []sim.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, frames)
}

// WriteJSON encodes a run to w, typically os.Stdout.
func WriteJSON(w io.Writer, meta RunMetadata, frames []sim.Frame) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, frames))
}
