package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// SDID constants for structured data IDs (RFC5424). 32473 is the
// documentation Private Enterprise Number from RFC 5612.
const (
	PEN         = 32473
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// AppName is the RFC5424 APP-NAME of every message
const AppName = "portcullis"

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH - security/authorization messages
	FacilityAuthPriv = 10 // LOG_AUTHPRIV - security/authorization messages (private)
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger handles audit logging in RFC5424 syslog format
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	appName  string
	pid      int
	now      func() time.Time
}

// NewLogger creates a new audit logger writing to w
func NewLogger(w io.Writer) *Logger {
	hostname, _ := os.Hostname()
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		writer:   w,
		hostname: hostname,
		appName:  AppName,
		pid:      os.Getpid(),
		now:      time.Now,
	}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// Format renders an event as one RFC5424 line
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Format(event Event, at time.Time) string {
	// Calculate PRI value: facility * 8 + severity
	pri := event.Facility()*8 + int(event.Severity())

	timestamp := at.UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)
}

// Log writes an audit event
func (l *Logger) Log(event Event) {
	line := l.Format(event, l.now())

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer, line)
}

// formatStructuredData formats the structured data according to RFC5424.
// Elements and params are sorted so output is stable.
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	var parts []string
	for _, sdid := range sortedKeys(sd) {
		params := sd[sdid]
		paramParts := []string{sdid}
		keys := make([]string, 0, len(params))
		for key := range params {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			paramParts = append(paramParts, fmt.Sprintf("%s=%s", key, escapeSDValue(params[key])))
		}
		parts = append(parts, "["+strings.Join(paramParts, " ")+"]")
	}
	return strings.Join(parts, "")
}

func sortedKeys(m map[string]map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	// Escape backslash, double quote, and closing bracket
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

// Auditor fans events out to the syslog line logger and, when configured,
// the database store
type Auditor struct {
	enabled bool
	logger  *Logger
	store   *Store
	log     hclog.Logger
}

// Options configures an Auditor
type Options struct {
	Enabled bool
	// Writer receives RFC5424 lines; stdout when nil
	Writer io.Writer
	// Store persists events; optional
	Store *Store
	// Logger reports persistence failures
	Logger hclog.Logger
}

// New creates an Auditor
func New(opts Options) *Auditor {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Auditor{
		enabled: opts.Enabled,
		logger:  NewLogger(opts.Writer),
		store:   opts.Store,
		log:     log,
	}
}

// Disabled returns an Auditor that drops every event
func Disabled() *Auditor {
	return New(Options{Enabled: false, Writer: io.Discard})
}

// Enabled returns whether audit logging is enabled
func (a *Auditor) Enabled() bool {
	return a != nil && a.enabled
}

// Log writes an event to the logger and store. Audit failures never fail the
// audited operation.
func (a *Auditor) Log(ctx context.Context, event Event) {
	if !a.Enabled() {
		return
	}
	a.logger.Log(event)

	if a.store != nil {
		if err := a.store.Save(ctx, event); err != nil {
			a.log.Warn("failed to save audit event", "msgid", event.MessageID(), "error", err)
		}
	}
}
