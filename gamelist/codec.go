package gamelist

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Cache line layout:
//
//	<titleId %016x>;<appType %08x>;<gamePath>;<folder>;<position>;<name>
//
// There is no escaping, a ';' inside gamePath or name shifts the fields of
// that line. Lines with less than cacheFieldCount fields are skipped, extra
// fields are ignored.
const cacheFieldCount = 6

type CacheEntry struct {
	TitleId  uint64
	AppType  AppType
	GamePath string
	Folder   string
	Position int
	Name     string
}

type CacheMode int

const (
	// Every cache line becomes a title
	CacheFull CacheMode = iota
	// Cache lines only rename titles already in the registry
	CacheUpdateExistingOnly
)

func ParseCache(data []byte) []CacheEntry {
	text := strings.ReplaceAll(string(data), "\r", "")

	var entries []CacheEntry
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Split(line, ";")
		if len(fields) < cacheFieldCount {
			continue
		}

		titleId, err := strconv.ParseUint(fields[0], 16, 64)
		if err != nil {
			continue
		}
		appType, err := strconv.ParseUint(fields[1], 16, 32)
		if err != nil {
			continue
		}
		// ordering hint only
		position, _ := strconv.Atoi(fields[4])

		entries = append(entries, CacheEntry{
			TitleId:  titleId,
			AppType:  AppType(appType),
			GamePath: fields[2],
			Folder:   fields[3],
			Position: position,
			Name:     fields[5],
		})
	}
	return entries
}

// One line per title, in the given order
func EncodeCache(titles []Title) []byte {
	var buf bytes.Buffer
	for i, t := range titles {
		fmt.Fprintf(&buf, "%016x;%08x;%s;%s;%d;%s\n", t.TitleId, uint32(t.AppType), t.GamePath, "", i, t.Name)
	}
	return buf.Bytes()
}

// Merge parsed cache entries into the registry, returns how many entries
// were applied (titles inserted or found)
func (r *Registry) ApplyCache(entries []CacheEntry, mode CacheMode) int {
	applied := 0
	for _, e := range entries {
		switch mode {
		case CacheUpdateExistingOnly:
			if _, found := r.SetName(e.TitleId, e.Name); found {
				applied++
			}
		default:
			if r.Add(e.TitleId, e.AppType, e.Name, e.GamePath, nil) == Inserted {
				applied++
			}
		}
	}
	return applied
}
