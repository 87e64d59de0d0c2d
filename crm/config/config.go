package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"crmbridge/tools/httpclient"
)

// Config 应用配置结构
type Config struct {
	// CRM 配置
	CRMBaseURL            string
	CRMAuthToken          string
	CRMInsecureSkipVerify bool
	CRMMaxRetries         int
	CRMRetryDelay         time.Duration
	CRMTimeout            time.Duration
	LookupThrottle        time.Duration
	IINField              string

	// 服务器配置
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// 日志配置
	LogLevel         string
	LogDir           string
	LogRetentionDays int
	LogDBEnabled     bool

	// 性能配置
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	//mysql 配置
	mysqlHost     string
	mysqlPort     int
	mysqlUser     string
	mysqlPassword string
	mysqlDatabase string
	debug         bool
	db            *gorm.DB
	lock          sync.Mutex
	Application   *application
}

// 应用服务

type application struct {
	server *gin.Engine
	lock   sync.Mutex
	root   gin.IRouter
}

var (
	cfg     *Config
	once    sync.Once
	loadErr error
)

// LoadConfig 加载配置，进程内只加载一次
func LoadConfig() (*Config, error) {
	once.Do(func() {
		cfg, loadErr = Load()
	})
	return cfg, loadErr
}

// Load 读取 CONFIG_FILE（可选）和环境变量，环境变量优先
func Load() (*Config, error) {
	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	c := &Config{
		CRMBaseURL:            src.getEnv("CRM_BASE_URL", ""),
		CRMAuthToken:          src.getEnv("CRM_AUTH_TOKEN", ""),
		CRMInsecureSkipVerify: src.getBoolEnv("CRM_INSECURE_SKIP_VERIFY", false),
		CRMMaxRetries:         src.getIntEnv("CRM_MAX_RETRIES", 3),
		CRMRetryDelay:         src.getMillisEnv("CRM_RETRY_DELAY_MS", 500*time.Millisecond),
		CRMTimeout:            src.getDurationEnv("CRM_TIMEOUT", 30*time.Second),
		LookupThrottle:        src.getMillisEnv("CRM_LOOKUP_THROTTLE_MS", 500*time.Millisecond),
		IINField:              src.getEnv("CRM_IIN_FIELD", "UF_CRM_1554290627253"),

		Port: src.getEnv("PORT", "8080"),

		// 超时配置
		ReadTimeout:     src.getDurationEnv("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    src.getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: src.getDurationEnv("SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:         src.getEnv("LOG_LEVEL", "info"),
		LogDir:           src.getEnv("LOG_DIR", "logs"),
		LogRetentionDays: src.getIntEnv("LOG_RETENTION_DAYS", 60),
		LogDBEnabled:     src.getBoolEnv("LOG_DB_ENABLED", false),

		// 连接池配置
		MaxIdleConns:        src.getIntEnv("MAX_IDLE_CONNS", 100),
		MaxIdleConnsPerHost: src.getIntEnv("MAX_IDLE_CONNS_PER_HOST", 10),
		IdleConnTimeout:     src.getDurationEnv("IDLE_CONN_TIMEOUT", 90*time.Second),

		//mysql 配置
		mysqlHost:     src.getEnv("MYSQL_HOST", "localhost"),
		mysqlPort:     src.getIntEnv("MYSQL_PORT", 3306),
		mysqlUser:     src.getEnv("MYSQL_USER", "root"),
		mysqlPassword: src.getEnv("MYSQL_PASSWORD", ""),
		mysqlDatabase: src.getEnv("MYSQL_DATABASE", "crm"),
		debug:         src.getBoolEnv("DEBUG", false),

		Application: &application{},
	}

	// 验证必需的配置
	if vErr := c.Validate(); vErr != nil {
		return nil, fmt.Errorf("config validation failed: %w", vErr)
	}
	return c, nil
}

func (a *application) GinServer() *gin.Engine {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.server == nil {
		a.server = gin.Default()
		// 加载全局CORS中间件
		a.server.Use(cors.Default())
	}

	return a.server
}

func (a *application) GinRootRouter() gin.IRouter {
	r := a.GinServer()

	a.lock.Lock()
	defer a.lock.Unlock()
	if a.root == nil {
		a.root = r.Group("app").Group("api").Group("v1")
	}

	return a.root
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.CRMBaseURL == "" {
		return fmt.Errorf("CRM_BASE_URL is required")
	}
	if !strings.HasPrefix(c.CRMBaseURL, "http://") && !strings.HasPrefix(c.CRMBaseURL, "https://") {
		return fmt.Errorf("CRM_BASE_URL must be an http(s) URL, got %q", c.CRMBaseURL)
	}
	if c.CRMAuthToken == "" {
		return fmt.Errorf("CRM_AUTH_TOKEN is required")
	}
	if c.CRMMaxRetries < 1 {
		return fmt.Errorf("CRM_MAX_RETRIES must be at least 1, got %d", c.CRMMaxRetries)
	}
	if c.LogRetentionDays < 1 {
		return fmt.Errorf("LOG_RETENTION_DAYS must be at least 1, got %d", c.LogRetentionDays)
	}
	return nil
}

// HTTPClientOptions CRM 请求使用的连接池配置
func (c *Config) HTTPClientOptions() httpclient.Options {
	return httpclient.Options{
		Timeout:             c.CRMTimeout,
		MaxIdleConns:        c.MaxIdleConns,
		MaxIdleConnsPerHost: c.MaxIdleConnsPerHost,
		IdleConnTimeout:     c.IdleConnTimeout,
		InsecureSkipVerify:  c.CRMInsecureSkipVerify,
	}
}

// DNS 数据库连接字符串
func (c *Config) DNS() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.mysqlUser, c.mysqlPassword, c.mysqlHost, c.mysqlPort, c.mysqlDatabase)
}

// GetDB 获取DB，首次调用时连接
func (c *Config) GetDB() (*gorm.DB, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.db == nil {
		db, err := gorm.Open(mysql.Open(c.DNS()), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect mysql: %w", err)
		}
		c.db = db

		if c.debug {
			c.db = c.db.Debug()
		}
	}

	return c.db, nil
}

// source 环境变量优先，其次是配置文件中同名的键
type source struct {
	file map[string]string
}

func newSource(path string) (*source, error) {
	s := &source{file: map[string]string{}}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	for k, v := range raw {
		value, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("config file %s: key %s: %w", path, k, err)
		}
		s.file[strings.ToUpper(k)] = value
	}
	return s, nil
}

func (s *source) lookup(key string) (string, bool) {
	if value := os.Getenv(key); value != "" {
		return value, true
	}
	value, ok := s.file[key]
	return value, ok && value != ""
}

// getEnv 获取环境变量，如果不存在则返回默认值
func (s *source) getEnv(key, defaultValue string) string {
	if value, ok := s.lookup(key); ok {
		return value
	}
	return defaultValue
}

// getIntEnv 获取整数类型的环境变量
func (s *source) getIntEnv(key string, defaultValue int) int {
	if value, ok := s.lookup(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv true/false/1/0
func (s *source) getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := s.lookup(key); ok {
		if b, err := cast.ToBoolE(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv 获取时间间隔类型的环境变量（秒）
func (s *source) getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, ok := s.lookup(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return time.Duration(intValue) * time.Second
		}
	}
	return defaultValue
}

// getMillisEnv 毫秒
func (s *source) getMillisEnv(key string, defaultValue time.Duration) time.Duration {
	if value, ok := s.lookup(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil && intValue >= 0 {
			return time.Duration(intValue) * time.Millisecond
		}
	}
	return defaultValue
}
