package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecmbridge/tracelog/internal/naming"
)

// Corpus is one snapshot of the analyzable files under the log root, already
// bounded by the retention window and the rolling-log file cap.
type Corpus struct {
	LogFiles []string // most recent first
	MapFiles []string
	RawFiles []string
}

// Scanner discovers log artifacts under a root directory. Work is bounded
// deliberately: only files modified within the retention window are
// considered, and only the maxLogFiles most-recently-modified rolling logs
// are returned regardless of how many older files exist.
type Scanner struct {
	root        string
	retention   time.Duration
	maxLogFiles int
	logGlob     string
	log         zerolog.Logger
}

// New builds a Scanner over root. logGlob matches rolling log file names
// (e.g. "*.log").
func New(root string, retention time.Duration, maxLogFiles int, logGlob string, log zerolog.Logger) *Scanner {
	return &Scanner{
		root:        root,
		retention:   retention,
		maxLogFiles: maxLogFiles,
		logGlob:     logGlob,
		log:         log.With().Str("component", "scanner").Logger(),
	}
}

type candidate struct {
	path    string
	modTime time.Time
}

// Scan walks the root once and classifies every file by naming convention.
// A missing or inaccessible root yields an empty corpus, not an error.
func (s *Scanner) Scan() Corpus {
	cutoff := time.Now().Add(-s.retention)

	var logs []candidate
	var corpus Corpus
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			s.log.Debug().Err(err).Str("path", path).Msg("skipping unreadable path")
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			return nil
		}

		switch naming.Parse(path).Kind {
		case naming.KindMap:
			corpus.MapFiles = append(corpus.MapFiles, path)
		case naming.KindRaw:
			corpus.RawFiles = append(corpus.RawFiles, path)
		default:
			if ok, _ := filepath.Match(s.logGlob, info.Name()); ok {
				logs = append(logs, candidate{path: path, modTime: info.ModTime()})
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("root", s.root).Msg("log root not scannable")
		return Corpus{}
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].modTime.After(logs[j].modTime) })
	if len(logs) > s.maxLogFiles {
		logs = logs[:s.maxLogFiles]
	}
	for _, c := range logs {
		corpus.LogFiles = append(corpus.LogFiles, c.path)
	}

	sort.Strings(corpus.MapFiles)
	sort.Strings(corpus.RawFiles)

	s.log.Debug().
		Int("logFiles", len(corpus.LogFiles)).
		Int("mapFiles", len(corpus.MapFiles)).
		Int("rawFiles", len(corpus.RawFiles)).
		Msg("corpus scan complete")
	return corpus
}
