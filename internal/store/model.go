package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// frameRow is the persisted form of a FrameRecord. BioParams is stored as
// a JSON column rather than text since the control protocol's BIOELECTRIC
// payload is already JSON; keeping the column typed lets it be queried
// with Postgres/SQLite JSON operators instead of string matching.
type frameRow struct {
	ID            uint `gorm:"primarykey"`
	FrameNumber   int  `gorm:"index"`
	Timestep      int
	Dataset       string
	BioParams     datatypes.JSON
	CompositeMode string
	PeerCount     int
	Width, Height int
	RenderMillis  int64
	OutputPath    string
	RenderedAt    time.Time
}

func (frameRow) TableName() string { return "frame_records" }

func toRow(rec *FrameRecord) frameRow {
	return frameRow{
		FrameNumber:   rec.FrameNumber,
		Timestep:      rec.Timestep,
		Dataset:       rec.Dataset,
		BioParams:     bioParamsToJSON(rec.BioParams),
		CompositeMode: rec.CompositeMode,
		PeerCount:     rec.PeerCount,
		Width:         rec.Width,
		Height:        rec.Height,
		RenderMillis:  rec.RenderMillis,
		OutputPath:    rec.OutputPath,
		RenderedAt:    rec.RenderedAt,
	}
}

func fromRow(r frameRow) FrameRecord {
	return FrameRecord{
		FrameNumber:   r.FrameNumber,
		Timestep:      r.Timestep,
		Dataset:       r.Dataset,
		BioParams:     string(r.BioParams),
		CompositeMode: r.CompositeMode,
		PeerCount:     r.PeerCount,
		Width:         r.Width,
		Height:        r.Height,
		RenderMillis:  r.RenderMillis,
		OutputPath:    r.OutputPath,
		RenderedAt:    r.RenderedAt,
	}
}

// bioParamsToJSON normalizes an empty or malformed BioParams string into
// "{}" so the column always holds valid JSON.
func bioParamsToJSON(text string) datatypes.JSON {
	if text == "" || !json.Valid([]byte(text)) {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON([]byte(text))
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&frameRow{})
}
