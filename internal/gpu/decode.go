package gpu

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// CounterItem is one instance of an instance-keyed counter array.
type CounterItem struct {
	Instance string
	Value    float64
}

// CounterSet is one collection of the three per-process GPU counters.
type CounterSet struct {
	Engine    []CounterItem // utilization percent per process engine
	Dedicated []CounterItem // dedicated memory bytes per process adapter
	Shared    []CounterItem // shared memory bytes per process adapter
}

// Len returns the total number of items.
func (c CounterSet) Len() int {
	return len(c.Engine) + len(c.Dedicated) + len(c.Shared)
}

var engineNames = map[string]string{
	"3d":              "3D",
	"compute":         "Compute",
	"copy":            "Copy",
	"videodecode":     "VideoDecode",
	"videoencode":     "VideoEncode",
	"videoprocessing": "VideoProcessing",
	"security":        "Security",
	"overlay":         "Overlay",
}

// ParseEngineInstance extracts the pid and engine label from an engine
// instance name such as "pid_1234_luid_0x00000000_0x0000ABCD_phys_0_eng_0_engtype_3D".
func ParseEngineInstance(name string) (pid int32, engine string, ok bool) {
	pid, ok = parsePID(name, false)
	if !ok {
		return 0, "", false
	}

	engine = "Unknown"
	if i := strings.Index(name, "engtype_"); i >= 0 {
		engine = name[i+len("engtype_"):]
		if canon, found := engineNames[strings.ToLower(engine)]; found {
			engine = canon
		}
	}
	return pid, engine, true
}

// ParseMemoryInstance extracts the pid from a memory instance name such as
// "pid_1234_luid_0x00000000_0x0000ABCD_phys_0".
func ParseMemoryInstance(name string) (int32, bool) {
	return parsePID(name, true)
}

func parsePID(name string, allowEnd bool) (int32, bool) {
	i := strings.Index(name, "pid_")
	if i < 0 {
		return 0, false
	}
	rest := name[i+len("pid_"):]
	end := strings.IndexByte(rest, '_')
	if end < 0 {
		if !allowEnd {
			return 0, false
		}
		end = len(rest)
	}
	pid, err := strconv.ParseInt(rest[:end], 10, 32)
	if err != nil || pid < 0 {
		return 0, false
	}
	return int32(pid), true
}

// ParseCounterOutput decodes "path;value" lines as printed for Get-Counter
// samples. Paths look like
// `\\host\gpu engine(pid_1_..._engtype_3d)\utilization percentage`.
// Lines that do not parse are skipped.
func ParseCounterOutput(output string) CounterSet {
	var set CounterSet
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		sep := strings.LastIndexByte(line, ';')
		if sep < 0 {
			continue
		}
		path, raw := line[:sep], line[sep+1:]

		open := strings.IndexByte(path, '(')
		closing := strings.LastIndexByte(path, ')')
		if open < 0 || closing < open {
			continue
		}
		value, err := parseFloat(raw)
		if err != nil {
			continue
		}
		item := CounterItem{Instance: path[open+1 : closing], Value: value}

		counter := strings.ToLower(path[closing+1:])
		switch {
		case strings.HasSuffix(counter, `\utilization percentage`):
			set.Engine = append(set.Engine, item)
		case strings.HasSuffix(counter, `\dedicated usage`):
			set.Dedicated = append(set.Dedicated, item)
		case strings.HasSuffix(counter, `\shared usage`):
			set.Shared = append(set.Shared, item)
		}
	}
	return set
}

// parseFloat accepts both '.' and ',' decimal separators.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

// pmonDefaultColumns is the column order when no header line is present.
var pmonDefaultColumns = []string{"gpu", "pid", "type", "sm", "mem", "enc", "dec", "fb", "command"}

// pmonEngines are the utilization columns reported as engines.
var pmonEngines = []string{"sm", "enc", "dec", "jpg", "ofa"}

// ParsePmon decodes `nvidia-smi pmon -c 1 -s um` output into the same
// instance-keyed shape the engine and memory decoders read. Frame buffer
// usage (MB) becomes dedicated memory in bytes.
func ParsePmon(output string) (CounterSet, error) {
	var set CounterSet
	cols := pmonDefaultColumns
	sawHeader := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			fields := strings.Fields(strings.TrimPrefix(line, "#"))
			if !sawHeader && len(fields) > 0 && fields[0] == "gpu" {
				cols = fields
				sawHeader = true
			}
			continue
		}

		fields := strings.Fields(line)
		row := make(map[string]string, len(cols))
		for i, c := range cols {
			if i < len(fields) {
				row[c] = fields[i]
			}
		}

		pid, err := strconv.ParseInt(row["pid"], 10, 32)
		if err != nil {
			continue
		}
		gpuIdx := row["gpu"]

		for _, eng := range pmonEngines {
			v, ok := pmonValue(row[eng])
			if !ok {
				continue
			}
			set.Engine = append(set.Engine, CounterItem{
				Instance: fmt.Sprintf("pid_%d_luid_0x0_phys_%s_eng_0_engtype_%s", pid, gpuIdx, strings.ToUpper(eng)),
				Value:    v,
			})
		}
		if fb, ok := pmonValue(row["fb"]); ok {
			set.Dedicated = append(set.Dedicated, CounterItem{
				Instance: fmt.Sprintf("pid_%d_luid_0x0_phys_%s", pid, gpuIdx),
				Value:    fb * 1024 * 1024,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return CounterSet{}, fmt.Errorf("read pmon output: %w", err)
	}
	return set, nil
}

func pmonValue(s string) (float64, bool) {
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
