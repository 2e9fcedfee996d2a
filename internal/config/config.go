package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Portal struct {
		ListingURL    string `yaml:"listing_url"`
		DetailURL     string `yaml:"detail_url"`
		DetailPattern string `yaml:"detail_pattern"`
		Cookie        string `yaml:"cookie"`
		UserAgent     string `yaml:"user_agent"`
		EntrySelector string `yaml:"entry_selector"`
		DetailScope   string `yaml:"detail_scope"`
	} `yaml:"portal"`

	Crawl struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
		Retries        int `yaml:"retries"`
		IntervalMillis int `yaml:"interval_millis"`
	} `yaml:"crawl"`

	Input struct {
		ListingFile string `yaml:"listing_file"`
		RequireIPv4 bool   `yaml:"require_ipv4"`
	} `yaml:"input"`

	Output struct {
		BaseDir  string `yaml:"base_dir"`
		FileName string `yaml:"file_name"`
		Prompt   bool   `yaml:"prompt"`
	} `yaml:"output"`

	Report struct {
		Locale         string `yaml:"locale"`
		SegmentSummary bool   `yaml:"segment_summary"`
	} `yaml:"report"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Logging struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		FilePath string `yaml:"file_path"`
	} `yaml:"logging"`
}

// Default 返回带默认值的配置
func Default() *Config {
	cfg := &Config{}
	cfg.Portal.DetailURL = "https://www1.ufrgs.br/RegistroEstacoes/Operacoes/ipdetails.php"
	cfg.Portal.DetailPattern = `https://www1\.ufrgs\.br/RegistroEstacoes/Operacoes/ipdetails\.php`
	cfg.Portal.UserAgent = "nac-crawler/1.0"
	cfg.Portal.EntrySelector = ".usado a"
	cfg.Portal.DetailScope = ".fieldset-1"
	cfg.Crawl.TimeoutSeconds = 30
	cfg.Crawl.Retries = 1
	cfg.Crawl.IntervalMillis = 500
	cfg.Output.BaseDir = "./results"
	cfg.Output.Prompt = true
	cfg.Report.Locale = "en"
	cfg.Database.Path = "res.db"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return cfg
}

// LoadConfig 读取 YAML 配置；文件不存在时生成默认配置并要求退出
// Returns config, shouldExit, error
func LoadConfig(path string) (*Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, true, fmt.Errorf("读取配置文件失败: %w", err)
		}
		fmt.Printf("配置文件 %s 不存在，正在生成默认配置文件...\n", path)
		if err := generateDefaultConfig(path); err != nil {
			return nil, true, fmt.Errorf("生成默认配置文件失败: %w", err)
		}
		fmt.Printf("默认配置文件已生成: %s\n", path)
		fmt.Println("请填写 portal.listing_url 与 portal.cookie（登录后的会话 Cookie）后重新运行程序。")
		fmt.Println("")
		fmt.Println("=== 输出文件说明 ===")
		fmt.Println("📁 results/[时间戳]/relatorio-nac-patrimonio.csv")
		fmt.Println("   分号分隔，UTF-8 BOM，字段：IPV4;ASSET-ID;USER;PRIMARY-OWNER;CO-OWNER;STATUS")
		fmt.Println("📁 results/[时间戳]/[时间戳]_segments.csv（report.segment_summary=true 时）")
		fmt.Println("   每个 /24 网段的状态统计")
		fmt.Println("========================")
		return nil, true, nil
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, true, err
	}
	return cfg, false, nil
}

// Parse 解析配置内容，叠加环境变量并校验
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	cfg.loadFromEnv()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("NAC_LISTING_URL"); v != "" {
		c.Portal.ListingURL = v
	}
	if v := os.Getenv("NAC_COOKIE"); v != "" {
		c.Portal.Cookie = v
	}
	if v := os.Getenv("NAC_LISTING_FILE"); v != "" {
		c.Input.ListingFile = v
	}
	if v := os.Getenv("NAC_OUTPUT_DIR"); v != "" {
		c.Output.BaseDir = v
	}
	if v := os.Getenv("NAC_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Crawl.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("NAC_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("NAC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) validate() error {
	if c.Portal.ListingURL == "" && c.Input.ListingFile == "" {
		return fmt.Errorf("portal.listing_url 与 input.listing_file 至少需要一个")
	}
	if strings.TrimSpace(c.Portal.DetailURL) == "" {
		return fmt.Errorf("portal.detail_url 不能为空")
	}
	if c.Crawl.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid crawl.timeout_seconds: %d", c.Crawl.TimeoutSeconds)
	}
	if c.Crawl.Retries < 0 || c.Crawl.Retries > 1 {
		return fmt.Errorf("crawl.retries 只能为 0 或 1，当前: %d", c.Crawl.Retries)
	}
	if c.Crawl.IntervalMillis < 0 {
		return fmt.Errorf("invalid crawl.interval_millis: %d", c.Crawl.IntervalMillis)
	}
	switch c.Report.Locale {
	case "en", "pt":
	default:
		return fmt.Errorf("unknown report.locale: %q", c.Report.Locale)
	}
	if c.Portal.EntrySelector == "" || c.Portal.DetailScope == "" {
		return fmt.Errorf("portal.entry_selector 与 portal.detail_scope 不能为空")
	}
	return nil
}

// generateDefaultConfig 生成默认配置文件
func generateDefaultConfig(path string) error {
	defaultConfigContent := `# config.yaml

# NAC 门户设置
portal:
  listing_url: ""     # 清单页完整地址，"=" 之后的部分作为 blocoConsulta 传给详情页
  detail_url: "https://www1.ufrgs.br/RegistroEstacoes/Operacoes/ipdetails.php"
  detail_pattern: 'https://www1\.ufrgs\.br/RegistroEstacoes/Operacoes/ipdetails\.php'  # 加载完成后的地址必须匹配
  cookie: ""          # 浏览器登录后的 Cookie 头，原样发送
  user_agent: "nac-crawler/1.0"
  entry_selector: ".usado a"
  detail_scope: ".fieldset-1"

# 抓取参数
crawl:
  timeout_seconds: 30  # 单次加载超时
  retries: 1           # 失败后最多重试一次（0 或 1）
  interval_millis: 500 # 两次加载之间的最小间隔（毫秒）

# 输入（可选）：离线保存的清单页 HTML，设置后不再请求 listing_url
input:
  listing_file: ""
  require_ipv4: false  # true 时跳过非 IPv4 标识

# 输出
output:
  base_dir: "./results"
  file_name: ""        # 留空则在结束时询问，默认 relatorio-nac-patrimonio
  prompt: true

# 报告
report:
  locale: "en"         # en 或 pt（葡萄牙语表头与状态描述）
  segment_summary: false

# 运行历史
database:
  path: "res.db"

# 日志
logging:
  level: "info"        # debug/info/warn/error
  format: "text"       # text/json
  file_path: ""        # 设置后同时写入滚动日志文件
`
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("写入默认配置文件失败: %w", err)
	}
	return nil
}
