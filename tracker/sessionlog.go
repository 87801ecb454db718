package tracker

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// csvHeader is the fixed column set of the session log. The merge columns
// are reserved; rows are written with merged "false" and merged_from empty.
var csvHeader = []string{
	"session_id", "zone", "start_time", "end_time", "session_duration",
	"paused_time", "gold_gained", "deaths", "insurance_cost", "net_profit",
	"notes", "merged", "merged_from",
}

// SessionRecord is one finished (or autosaved in-progress) session row.
type SessionRecord struct {
	ID            int
	Zone          string
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	PausedTime    time.Duration
	GoldGained    int64
	Deaths        int
	InsuranceCost int64
	NetProfit     int64
	Notes         string
}

// SessionLog is the CSV-backed session history. Writes replace the whole
// file via a temp file and rename, and rows other than the one being touched
// are carried through byte for byte, so a partially corrupt log never loses
// the rows that still parse.
type SessionLog struct {
	path string
}

// NewSessionLog stores sessions at dir/sessions.csv.
func NewSessionLog(dir string) *SessionLog {
	return &SessionLog{path: filepath.Join(dir, "sessions.csv")}
}

// Path returns the backing file path.
func (sl *SessionLog) Path() string { return sl.path }

// readRows returns every data row as raw fields, header excluded. A missing
// file is an empty log. Rows that the CSV reader cannot parse are dropped;
// rows with too few fields or a bad id are kept verbatim (they may belong to
// a future format) but ignored by id-based operations.
func (sl *SessionLog) readRows() ([][]string, error) {
	f, err := os.Open(sl.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip the unparseable line, keep reading.
			continue
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == "session_id" {
				continue
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func (sl *SessionLog) writeRows(rows [][]string) error {
	tmp := sl.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, sl.path)
}

func rowID(row []string) (int, bool) {
	if len(row) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return 0, false
	}
	return id, true
}

// NextID returns one past the highest id in the log. Rows with unparseable
// ids are ignored rather than treated as fatal.
func (sl *SessionLog) NextID() (int, error) {
	rows, err := sl.readRows()
	if err != nil {
		return 0, err
	}
	max := 0
	for _, row := range rows {
		if id, ok := rowID(row); ok && id > max {
			max = id
		}
	}
	return max + 1, nil
}

// Upsert writes the record, replacing any existing row with the same id.
// Other rows are preserved exactly as stored.
func (sl *SessionLog) Upsert(rec SessionRecord) error {
	rows, err := sl.readRows()
	if err != nil {
		return err
	}
	encoded := encodeRecord(rec)
	replaced := false
	for i, row := range rows {
		if id, ok := rowID(row); ok && id == rec.ID {
			rows[i] = encoded
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, encoded)
	}
	return sl.writeRows(rows)
}

// Delete removes the row with the given id, leaving every other row intact.
// Deleting an absent id is not an error.
func (sl *SessionLog) Delete(id int) error {
	rows, err := sl.readRows()
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, row := range rows {
		if rid, ok := rowID(row); ok && rid == id {
			continue
		}
		kept = append(kept, row)
	}
	return sl.writeRows(kept)
}

// All returns every row that decodes as a session record, oldest first.
func (sl *SessionLog) All() ([]SessionRecord, error) {
	rows, err := sl.readRows()
	if err != nil {
		return nil, err
	}
	var out []SessionRecord
	for _, row := range rows {
		rec, ok := decodeRecord(row)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeRecord(rec SessionRecord) []string {
	end := ""
	if !rec.EndTime.IsZero() {
		end = rec.EndTime.Format(timeLayout)
	}
	return []string{
		strconv.Itoa(rec.ID),
		rec.Zone,
		rec.StartTime.Format(timeLayout),
		end,
		formatDuration(rec.Duration),
		formatDuration(rec.PausedTime),
		strconv.FormatInt(rec.GoldGained, 10),
		strconv.Itoa(rec.Deaths),
		strconv.FormatInt(rec.InsuranceCost, 10),
		strconv.FormatInt(rec.NetProfit, 10),
		rec.Notes,
		"false",
		"",
	}
}

func decodeRecord(row []string) (SessionRecord, bool) {
	if len(row) < 11 {
		return SessionRecord{}, false
	}
	id, ok := rowID(row)
	if !ok {
		return SessionRecord{}, false
	}
	start, err := time.Parse(timeLayout, row[2])
	if err != nil {
		return SessionRecord{}, false
	}
	var end time.Time
	if row[3] != "" {
		end, err = time.Parse(timeLayout, row[3])
		if err != nil {
			return SessionRecord{}, false
		}
	}
	dur, ok1 := parseDuration(row[4])
	paused, ok2 := parseDuration(row[5])
	if !ok1 || !ok2 {
		return SessionRecord{}, false
	}
	gold, err := strconv.ParseInt(row[6], 10, 64)
	if err != nil {
		return SessionRecord{}, false
	}
	deaths, err := strconv.Atoi(row[7])
	if err != nil {
		return SessionRecord{}, false
	}
	ins, err := strconv.ParseInt(row[8], 10, 64)
	if err != nil {
		return SessionRecord{}, false
	}
	net, err := strconv.ParseInt(row[9], 10, 64)
	if err != nil {
		return SessionRecord{}, false
	}
	return SessionRecord{
		ID: id, Zone: row[1], StartTime: start, EndTime: end,
		Duration: dur, PausedTime: paused, GoldGained: gold,
		Deaths: deaths, InsuranceCost: ins, NetProfit: net, Notes: row[10],
	}, true
}

// formatDuration renders HH:MM:SS; hours run past 24 rather than rolling
// into days.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

func parseDuration(s string) (time.Duration, bool) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second, true
}
