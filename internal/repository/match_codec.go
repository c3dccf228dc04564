package repository

// The match collection is stored as one JSON array.  The field names are the
// ones the mobile client has always written under the "partidas" key, so a
// blob produced by older app versions loads unchanged.  Two quirks of those
// blobs are tolerated on read: coordinates written as strings (or as empty
// strings when unknown) and derived fields that may be stale.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/bola-na-rede/internal/model"
)

type storedMatch struct {
	ID                  int64           `json:"id"`
	Nome                string          `json:"nome"`
	Data                string          `json:"data"`
	Hora                string          `json:"hora"`
	Cep                 string          `json:"cep"`
	Logradouro          string          `json:"logradouro"`
	Numero              string          `json:"numero"`
	Bairro              string          `json:"bairro"`
	Cidade              string          `json:"cidade"`
	UF                  string          `json:"uf"`
	NomeQuadra          string          `json:"nomeQuadra"`
	Latitude            json.RawMessage `json:"latitude,omitempty"`
	Longitude           json.RawMessage `json:"longitude,omitempty"`
	ValorAluguel        json.Number     `json:"valorAluguel"`
	QuantidadeJogadores int             `json:"quantidadeJogadores"`
	JogadoresEmails     []string        `json:"jogadoresEmails"`
	ValorUnitario       json.Number     `json:"valorUnitario"`
	EmailUsuario        string          `json:"emailUsuario"`
}

// PerPersonFunc computes the per-player share written to valorUnitario.  It
// is injected so the repository and the service share one rounding rule.
type PerPersonFunc func(rent decimal.Decimal, rosterSize int) decimal.Decimal

func toStored(m model.Match, perPerson PerPersonFunc) storedMatch {
	roster := m.Roster
	if roster == nil {
		roster = []string{}
	}
	s := storedMatch{
		ID:                  m.ID,
		Nome:                m.Name,
		Data:                m.Date,
		Hora:                m.Time,
		Cep:                 m.Location.PostalCode,
		Logradouro:          m.Location.Street,
		Numero:              m.Location.Number,
		Bairro:              m.Location.Neighborhood,
		Cidade:              m.Location.City,
		UF:                  m.Location.Region,
		NomeQuadra:          m.Location.VenueName,
		ValorAluguel:        json.Number(m.RentCost.String()),
		QuantidadeJogadores: m.PlayerCount(),
		JogadoresEmails:     roster,
		ValorUnitario:       json.Number(perPerson(m.RentCost, len(m.Roster)).String()),
		EmailUsuario:        m.OrganizerEmail,
	}
	if m.Coordinates != nil {
		s.Latitude = json.RawMessage(strconv.FormatFloat(m.Coordinates.Lat, 'f', -1, 64))
		s.Longitude = json.RawMessage(strconv.FormatFloat(m.Coordinates.Lng, 'f', -1, 64))
	}
	return s
}

func fromStored(s storedMatch) (model.Match, error) {
	rent := decimal.Zero
	if s.ValorAluguel != "" {
		var err error
		rent, err = decimal.NewFromString(s.ValorAluguel.String())
		if err != nil {
			return model.Match{}, fmt.Errorf("match %d: valorAluguel: %w", s.ID, err)
		}
	}
	m := model.Match{
		ID:   s.ID,
		Name: s.Nome,
		Date: s.Data,
		Time: s.Hora,
		Location: model.Location{
			PostalCode:   s.Cep,
			Street:       s.Logradouro,
			Number:       s.Numero,
			Neighborhood: s.Bairro,
			City:         s.Cidade,
			Region:       s.UF,
			VenueName:    s.NomeQuadra,
		},
		RentCost:       rent,
		OrganizerEmail: s.EmailUsuario,
		Roster:         s.JogadoresEmails,
	}
	if m.Roster == nil {
		m.Roster = []string{}
	}
	lat, okLat := flexFloat(s.Latitude)
	lng, okLng := flexFloat(s.Longitude)
	if okLat && okLng {
		m.Coordinates = &model.Coordinates{Lat: lat, Lng: lng}
	}
	return m, nil
}

// flexFloat reads a coordinate written either as a JSON number or as a
// string.  Empty, null and unparsable values report false.
func flexFloat(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	txt := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		txt = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	}
	if txt == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(txt, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func encodeMatches(records []model.Match, perPerson PerPersonFunc) (string, error) {
	out := make([]storedMatch, 0, len(records))
	for _, m := range records {
		out = append(out, toStored(m, perPerson))
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode matches: %w", err)
	}
	return string(bs), nil
}

func decodeMatches(blob string) ([]model.Match, error) {
	var stored []storedMatch
	if err := json.Unmarshal([]byte(blob), &stored); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	out := make([]model.Match, 0, len(stored))
	for _, s := range stored {
		m, err := fromStored(s)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
