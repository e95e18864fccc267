package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Ubicaciones-api/internal/domain/capacity"
	"github.com/jhoicas/Ubicaciones-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// layoutFile describe el directorio de ubicaciones: una lista explícita y/o rejillas generadas.
type layoutFile struct {
	Bins  []binSpec  `yaml:"bins"`
	Grids []gridSpec `yaml:"grids"`
}

type binSpec struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	X           int    `yaml:"x"`
	Y           int    `yaml:"y"`
	Z           int    `yaml:"z"`
	MaxQuantity int64  `yaml:"max_quantity"`
	MaxVolume   string `yaml:"max_volume"`
}

// gridSpec genera ubicaciones prefix-XX-YY-ZZ para cada (x, y, z) de los rangos 1..N.
type gridSpec struct {
	Prefix      string `yaml:"prefix"`
	X           int    `yaml:"x"`
	Y           int    `yaml:"y"`
	Z           int    `yaml:"z"`
	MaxQuantity int64  `yaml:"max_quantity"`
	MaxVolume   string `yaml:"max_volume"`
}

// parseLayout lee el YAML y devuelve las ubicaciones ordenadas por id.
// Ids repetidos o coordenadas repetidas son error.
func parseLayout(r io.Reader, now time.Time) ([]*entity.Bin, error) {
	var lf layoutFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&lf); err != nil {
		return nil, fmt.Errorf("decodificar layout: %w", err)
	}

	var bins []*entity.Bin
	for _, s := range lf.Bins {
		b, err := s.toBin(now)
		if err != nil {
			return nil, err
		}
		bins = append(bins, b)
	}
	for _, g := range lf.Grids {
		generated, err := g.expand(now)
		if err != nil {
			return nil, err
		}
		bins = append(bins, generated...)
	}

	ids := make(map[string]struct{}, len(bins))
	coords := make(map[entity.Coordinates]string, len(bins))
	for _, b := range bins {
		if _, dup := ids[b.ID]; dup {
			return nil, fmt.Errorf("ubicación %q repetida", b.ID)
		}
		ids[b.ID] = struct{}{}
		if other, dup := coords[b.Coordinates]; dup {
			return nil, fmt.Errorf("coordenadas %s repetidas en %q y %q", b.Coordinates, other, b.ID)
		}
		coords[b.Coordinates] = b.ID
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].ID < bins[j].ID })
	return bins, nil
}

func (s binSpec) toBin(now time.Time) (*entity.Bin, error) {
	id := strings.TrimSpace(s.ID)
	if id == "" {
		return nil, fmt.Errorf("ubicación sin id en %v", entity.Coordinates{X: s.X, Y: s.Y, Z: s.Z})
	}
	vol, err := parseVolume(s.MaxVolume)
	if err != nil {
		return nil, fmt.Errorf("ubicación %q: %w", id, err)
	}
	if s.MaxQuantity < 0 {
		return nil, fmt.Errorf("ubicación %q: max_quantity negativo", id)
	}
	return &entity.Bin{
		ID:          id,
		Label:       s.Label,
		Coordinates: entity.Coordinates{X: s.X, Y: s.Y, Z: s.Z},
		MaxQuantity: s.MaxQuantity,
		MaxVolume:   vol,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (g gridSpec) expand(now time.Time) ([]*entity.Bin, error) {
	if g.Prefix == "" || g.X < 1 || g.Y < 1 || g.Z < 1 {
		return nil, fmt.Errorf("rejilla inválida: prefix y x, y, z >= 1 requeridos")
	}
	out := make([]*entity.Bin, 0, g.X*g.Y*g.Z)
	for x := 1; x <= g.X; x++ {
		for y := 1; y <= g.Y; y++ {
			for z := 1; z <= g.Z; z++ {
				b, err := binSpec{
					ID:          fmt.Sprintf("%s-%02d-%02d-%02d", g.Prefix, x, y, z),
					X:           x,
					Y:           y,
					Z:           z,
					MaxQuantity: g.MaxQuantity,
					MaxVolume:   g.MaxVolume,
				}.toBin(now)
				if err != nil {
					return nil, err
				}
				out = append(out, b)
			}
		}
	}
	return out, nil
}

// parseVolume vacío = 0 (sin límite).
func parseVolume(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("max_volume %q no es numérico", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("max_volume negativo")
	}
	if d.Exponent() < -18 || d.Exponent() > 12 || d.GreaterThanOrEqual(capacity.VolumeCeiling) {
		return decimal.Zero, fmt.Errorf("max_volume %q fuera de rango", s)
	}
	if !d.Truncate(capacity.VolumeScale).Equal(d) {
		return decimal.Zero, fmt.Errorf("max_volume %q admite a lo sumo %d decimales", s, capacity.VolumeScale)
	}
	return d, nil
}

// writeSQL escribe el esquema PostgreSQL y los INSERT idempotentes de las ubicaciones.
func writeSQL(w io.Writer, schema string, bins []*entity.Bin) error {
	var sb strings.Builder
	sb.WriteString("-- Directorio de ubicaciones generado por seed_bins\n")
	sb.WriteString(schema)
	sb.WriteString("\n")
	for _, b := range bins {
		fmt.Fprintf(&sb,
			"INSERT INTO bins (id, label, x, y, z, max_quantity, max_volume, created_at, updated_at) VALUES (%s, %s, %d, %d, %d, %d, %s, now(), now()) ON CONFLICT (id) DO UPDATE SET label = EXCLUDED.label, max_quantity = EXCLUDED.max_quantity, max_volume = EXCLUDED.max_volume, updated_at = now();\n",
			quote(b.ID), quote(b.Label), b.Coordinates.X, b.Coordinates.Y, b.Coordinates.Z, b.MaxQuantity, b.MaxVolume.String())
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
