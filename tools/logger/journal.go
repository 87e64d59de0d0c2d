package logger

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Category 业务日志分类
type Category string

const (
	CategoryError    Category = "error"
	CategorySuccess  Category = "success"
	CategoryCreation Category = "creation"
	CategoryUpdate   Category = "update"
	CategoryRequest  Category = "request"
)

// Categories 所有已知分类
var Categories = []Category{CategoryError, CategorySuccess, CategoryCreation, CategoryUpdate, CategoryRequest}

// 分类对应的目录名，沿用线上已有的目录结构
var categoryDirs = map[Category]string{
	CategoryError:    "errors",
	CategorySuccess:  "success",
	CategoryCreation: "creation",
	CategoryUpdate:   "updates",
	CategoryRequest:  "requests",
}

const (
	// DayLayout 按天分区的目录名格式 DD_MM_YYYY
	DayLayout = "02_01_2006"
	// DefaultRetentionDays 默认日志保留天数
	DefaultRetentionDays = 60

	lineTimeLayout = "15:04:05"
)

// Entry 一条业务日志
type Entry struct {
	Time      time.Time
	SessionID string
	Category  Category
	Message   string
}

// EntrySink 日志镜像（例如写入数据库）
type EntrySink interface {
	Store(entry Entry) error
}

// JournalConfig Journal 配置
type JournalConfig struct {
	Directory     string
	RetentionDays int
	Sink          EntrySink
	Console       *Logger
	// Now 为空时使用 time.Now
	Now func() time.Time
}

// Journal 按分类、按天写入文件的业务日志，并定期清理过期文件。
// 同一进程内的写入通过互斥锁串行化。
type Journal struct {
	mu            sync.Mutex
	directory     string
	retentionDays int
	sessionID     string
	dirs          map[Category]string
	initialized   bool

	sink    EntrySink
	console *Logger
	now     func() time.Time
}

// NewJournal 创建 Journal，目录在首次写入时才创建
func NewJournal(cfg JournalConfig) *Journal {
	j := &Journal{
		directory:     strings.TrimRight(cfg.Directory, string(os.PathSeparator)),
		retentionDays: cfg.RetentionDays,
		sessionID:     uuid.NewString(),
		sink:          cfg.Sink,
		console:       cfg.Console,
		now:           cfg.Now,
	}
	if j.retentionDays <= 0 {
		j.retentionDays = DefaultRetentionDays
	}
	if j.console == nil {
		j.console = NewLogger("info")
	}
	if j.now == nil {
		j.now = time.Now
	}
	return j
}

// SessionID 当前进程的会话标识
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Directory 日志根目录
func (j *Journal) Directory() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.directory
}

// SetDirectory 修改日志根目录，下次写入时重新初始化
func (j *Journal) SetDirectory(dir string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.directory = strings.TrimRight(dir, string(os.PathSeparator))
	j.initialized = false
}

// SetRetentionDays 修改保留天数，下次写入时重新初始化
func (j *Journal) SetRetentionDays(days int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.retentionDays = days
	j.initialized = false
}

// Init 创建目录并清理过期日志，满足 ioc.Object
func (j *Journal) Init() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.initialize()
	return nil
}

// Log 追加一条日志。写入失败只输出到控制台，不影响调用方。
func (j *Journal) Log(category Category, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.initialize()

	entry := Entry{
		Time:      j.now(),
		SessionID: j.sessionID,
		Category:  category,
		Message:   message,
	}

	path := j.filePath(category)
	if err := j.render(path, entry); err != nil {
		j.console.Error("journal: write %s: %v", path, err)
	}

	if j.sink != nil {
		if err := j.sink.Store(entry); err != nil {
			j.console.Error("journal: mirror entry: %v", err)
		}
	}
}

// Logf 格式化后写入
func (j *Journal) Logf(category Category, format string, args ...interface{}) {
	j.Log(category, fmt.Sprintf(format, args...))
}

// FilePath 返回分类当前的日志文件路径
func (j *Journal) FilePath(category Category) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.initialize()
	return j.filePath(category)
}

// Prune 立即执行一次过期清理，返回删除的文件数
func (j *Journal) Prune() (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.prune()
}

func (j *Journal) initialize() {
	if j.initialized {
		return
	}

	day := j.now().Format(DayLayout)
	j.dirs = make(map[Category]string, len(categoryDirs))
	for category, name := range categoryDirs {
		j.dirs[category] = filepath.Join(j.directory, name, day)
	}

	for _, dir := range j.dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			j.console.Error("journal: create directory %s: %v", dir, err)
		}
	}

	if n, err := j.prune(); err != nil {
		j.console.Error("journal: prune old logs: %v", err)
	} else if n > 0 {
		j.console.Info("journal: removed %d expired log files", n)
	}

	j.initialized = true
}

func (j *Journal) filePath(category Category) string {
	filename := string(category) + ".log"
	if dir, ok := j.dirs[category]; ok {
		return filepath.Join(dir, filename)
	}
	return filepath.Join(j.directory, filename)
}

// prune 删除各分类目录下超过保留期的 .log 文件，并移除清空后的日期目录
func (j *Journal) prune() (int, error) {
	now := j.now()
	retention := time.Duration(j.retentionDays) * 24 * time.Hour
	removed := 0

	for category, name := range categoryDirs {
		root := filepath.Join(j.directory, name)
		var dayDirs []string

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				if path != root && path != j.dirs[category] {
					dayDirs = append(dayDirs, path)
				}
				return nil
			}
			if filepath.Ext(path) != ".log" {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			if now.Sub(info.ModTime()) >= retention {
				if err := os.Remove(path); err != nil {
					return err
				}
				removed++
			}
			return nil
		})
		if err != nil {
			return removed, fmt.Errorf("walk %s: %w", root, err)
		}

		// 深层目录先删
		sort.Sort(sort.Reverse(sort.StringSlice(dayDirs)))
		for _, dir := range dayDirs {
			if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
				_ = os.Remove(dir)
			}
		}
	}

	return removed, nil
}

// render 以 "[HH:MM:SS] [session] message" 格式追加一行。
// session 与 message 作为一个部分输出，message 为空时也保留分隔空格。
func (j *Journal) render(path string, entry Entry) error {
	out := &appendFile{path: path}
	zl := zerolog.New(zerolog.ConsoleWriter{
		Out:             out,
		NoColor:         true,
		PartsOrder:      []string{zerolog.TimestampFieldName, zerolog.MessageFieldName},
		FormatTimestamp: bracketed,
		FormatMessage: func(i interface{}) string {
			msg := ""
			if i != nil {
				msg = fmt.Sprint(i)
			}
			return bracketed(entry.SessionID) + " " + msg
		},
	})

	zl.Log().
		Str(zerolog.TimestampFieldName, entry.Time.Format(lineTimeLayout)).
		Msg(entry.Message)

	return out.err
}

func bracketed(i interface{}) string {
	return fmt.Sprintf("[%v]", i)
}

// appendFile 每次写入时打开文件追加并关闭
type appendFile struct {
	path string
	err  error
}

func (a *appendFile) Write(p []byte) (int, error) {
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		a.err = err
		return 0, err
	}
	n, err := f.Write(p)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		a.err = err
	}
	return n, err
}
