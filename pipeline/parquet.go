package pipeline

import (
	"math"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type pointParquetRow struct {
	Seq       int64   `parquet:"name=seq, type=INT64"`
	Kind      string  `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Lat       float64 `parquet:"name=lat, type=DOUBLE"`
	Lon       float64 `parquet:"name=lon, type=DOUBLE"`
	TimeUTC   string  `parquet:"name=time_utc, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Elevation string  `parquet:"name=elevation, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Fix       string  `parquet:"name=fix, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	PDOP      float64 `parquet:"name=pdop, type=DOUBLE"`
	HDOP      float64 `parquet:"name=hdop, type=DOUBLE"`
	VDOP      float64 `parquet:"name=vdop, type=DOUBLE"`
	ValidPDOP bool    `parquet:"name=valid_pdop, type=BOOLEAN"`
	ValidHDOP bool    `parquet:"name=valid_hdop, type=BOOLEAN"`
	ValidVDOP bool    `parquet:"name=valid_vdop, type=BOOLEAN"`
	AudioName string  `parquet:"name=audio_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	AudioSeq  int64   `parquet:"name=audio_seq, type=INT64"`
	Rescued   bool    `parquet:"name=rescued, type=BOOLEAN"`
}

func marshalPointsParquet(rows []PointRow) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(pointParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		row := pointParquetRow{
			Seq:       r.Seq,
			Kind:      r.Kind,
			Lat:       r.Lat,
			Lon:       r.Lon,
			TimeUTC:   r.TimeUTC,
			Elevation: r.Elevation,
			Fix:       r.Fix,
			PDOP:      valueOrNaN(r.PDOP),
			HDOP:      valueOrNaN(r.HDOP),
			VDOP:      valueOrNaN(r.VDOP),
			ValidPDOP: r.PDOP != nil,
			ValidHDOP: r.HDOP != nil,
			ValidVDOP: r.VDOP != nil,
			AudioName: r.AudioName,
			AudioSeq:  r.AudioSeq,
			Rescued:   r.Rescued,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
