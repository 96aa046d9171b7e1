package semantic

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/gatherworks/gather/internal/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS index_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	seq        INTEGER PRIMARY KEY,
	file       TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	end_line   INTEGER NOT NULL,
	content    TEXT NOT NULL,
	embedding  BLOB NOT NULL
);
`

// Save writes the full chunk list, embeddings included, to a SQLite file at
// path, replacing any previous index stored there.
func (ix *Index) Save(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("save index: open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("save index: init schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("save index: begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM chunks", "DELETE FROM index_meta"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("save index: clear: %w", err)
		}
	}

	for key, value := range map[string]string{
		"model":     ix.Model,
		"dimension": strconv.Itoa(ix.Dimension),
	} {
		if _, err := tx.Exec("INSERT INTO index_meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("save index: meta %s: %w", key, err)
		}
	}

	insert, err := tx.Prepare("INSERT INTO chunks (seq, file, start_line, end_line, content, embedding) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("save index: prepare: %w", err)
	}
	defer insert.Close()

	for seq, c := range ix.Chunks {
		if _, err := insert.Exec(seq, c.File, c.StartLine, c.EndLine, c.Content, encodeVector(c.Embedding)); err != nil {
			return fmt.Errorf("save index: insert chunk %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save index: commit: %w", err)
	}
	return nil
}

// Load reads an index back from a SQLite file. The stored embeddings are
// reused as-is; the provider is only attached for query embedding and is
// never called for the loaded chunks.
func Load(path string, provider embed.Provider) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("load index: open %s: %w", path, err)
	}
	defer db.Close()

	ix := &Index{provider: provider}

	rows, err := db.Query("SELECT key, value FROM index_meta")
	if err != nil {
		return nil, fmt.Errorf("load index: read meta: %w", err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load index: scan meta: %w", err)
		}
		switch key {
		case "model":
			ix.Model = value
		case "dimension":
			ix.Dimension, _ = strconv.Atoi(value)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("load index: meta rows: %w", err)
	}
	rows.Close()

	rows, err = db.Query("SELECT file, start_line, end_line, content, embedding FROM chunks ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("load index: read chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Chunk
		var blob []byte
		if err := rows.Scan(&c.File, &c.StartLine, &c.EndLine, &c.Content, &blob); err != nil {
			return nil, fmt.Errorf("load index: scan chunk: %w", err)
		}
		c.Embedding = decodeVector(blob)
		ix.Chunks = append(ix.Chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load index: chunk rows: %w", err)
	}

	return ix, nil
}

// encodeVector packs a float32 vector as little-endian bytes. The exact bit
// patterns round-trip, so reloaded indexes reproduce identical similarity
// scores.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}
