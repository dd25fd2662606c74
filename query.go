package serialrw

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrInvalidQuery = errors.New("invalid query table")

// Query is one entry of the request/response table. Request and Response hold
// raw line bytes.
type Query struct {
	Name     string
	Request  string
	Response string
}

type queryFile struct {
	Queries *[]queryEntry `json:"Queries"`
}

type queryEntry struct {
	MessageName string   `json:"MessageName"`
	Request     []string `json:"Request"`
	Response    []string `json:"Response"`
}

// ReadQueries loads a query table from a JSON file.
func ReadQueries(path string) ([]Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseQueries(f)
}

// ParseQueries decodes {"Queries": [{"MessageName", "Request", "Response"}]}
// where Request and Response are lists of hex bytes such as "F0" or "0x55".
func ParseQueries(r io.Reader) ([]Query, error) {
	var file queryFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if file.Queries == nil {
		return nil, fmt.Errorf("%w: missing Queries", ErrInvalidQuery)
	}

	queries := make([]Query, 0, len(*file.Queries))
	for _, entry := range *file.Queries {
		request, err := decodeHexList(entry.Request)
		if err != nil {
			return nil, fmt.Errorf("%w: %s Request%v", ErrInvalidQuery, entry.MessageName, err)
		}
		response, err := decodeHexList(entry.Response)
		if err != nil {
			return nil, fmt.Errorf("%w: %s Response%v", ErrInvalidQuery, entry.MessageName, err)
		}
		queries = append(queries, Query{Name: entry.MessageName, Request: request, Response: response})
	}
	return queries, nil
}

func decodeHexList(list []string) (string, error) {
	var b strings.Builder
	for i, s := range list {
		digits := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
		v, err := strconv.ParseUint(digits, 16, 8)
		if err != nil {
			return "", fmt.Errorf("[%d]: %q is not a hex byte", i, s)
		}
		b.WriteByte(byte(v))
	}
	return b.String(), nil
}
