package gosynthnv

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ClientConfig 保存创建 Client 的配置。
type ClientConfig struct {
	// Timeout 是单行响应的等待预算（默认 1s）
	Timeout time.Duration

	// MultiTimeout 是多行响应（直到 EOM. 哨兵）的总预算（默认 10s）
	MultiTimeout time.Duration

	// Logger 用于调试输出（nil 禁用日志）
	Logger *zerolog.Logger
}

// DefaultConfig 返回带默认值的 ClientConfig。
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:      time.Second,
		MultiTimeout: 10 * time.Second,
	}
}

// Client 表示与一台 SynthNV Pro 的连接。Client 独占 Conn，并用
// 互斥锁把每次命令/响应往返序列化为不可分割的事务：清空陈旧输入、
// 写入命令、读完全部响应，期间锁一直持有。多个 goroutine 可以并发
// 调用，同一物理通道上任一时刻最多只有一次往返在进行。
//
// 锁不跨越相继的两次调用：由两次事务组合成的高层操作对其他
// goroutine 不是原子的。
type Client struct {
	conn   *Conn
	config *ClientConfig

	// mu 在整个事务期间（写入 + 读完全部响应）保持持有
	mu sync.Mutex
}

// NewClient 用已打开的 Conn 创建 Client。
func NewClient(conn *Conn, config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{conn: conn, config: config}
}

// Dial 打开串口并创建 Client。
func Dial(address string, baud int, config *ClientConfig) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	conn, err := OpenWithLogger(address, baud, config.Timeout, config.Logger)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, config), nil
}

// Close 关闭底层连接。
func (c *Client) Close() error {
	return c.conn.Close()
}

// replyMode 描述一条命令期待的响应形状。
type replyMode int

const (
	replyNone   replyMode = iota // 不期待响应（纯设置命令）
	replySingle                  // 单行响应
	replyMulti                   // 多行响应，直到 EOM. 哨兵
)

// transact 执行一次完整的命令/响应交换：加锁、清空陈旧输入、写入
// 命令，然后按 mode 读取响应。单行模式返回该行（超时无数据时为空
// 字符串，这是正常结果而非错误）；多行模式返回哨兵之前的全部数据行。
// 分类为设备错误的行以 DeviceError 返回。任何退出路径都会释放锁，
// 一次失败的事务不会在 Client 上留下粘滞状态。
func (c *Client) transact(cmd string, mode replyMode, wait time.Duration) (string, []any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.ResetBuffers(); err != nil {
		return "", nil, err
	}
	if err := c.conn.Write([]byte(cmd)); err != nil {
		return "", nil, err
	}

	switch mode {
	case replyNone:
		return "", nil, nil

	case replyMulti:
		values, err := c.conn.ReadResponses(wait)
		if err != nil {
			var de *DeviceError
			if errors.As(err, &de) {
				de.Command = cmd
				c.log("device error for %q: %s", cmd, de.Message)
			}
			return "", values, err
		}
		c.log("transact %q: %d values", cmd, len(values))
		return "", values, nil

	default:
		line, err := c.conn.ReadResponse(wait)
		if err != nil {
			return "", nil, err
		}
		if Classify(line) == ResponseError {
			derr := NewDeviceError(cmd, line)
			c.log("device error for %q: %s", cmd, derr.Message)
			return "", nil, derr
		}
		c.log("transact %q -> %q", cmd, line)
		return line, nil, nil
	}
}

// Exec 发送一条不期待响应的设置命令（fire-and-forget）。
func (c *Client) Exec(code string, arg any, sigFigs int) error {
	cmd := FormatCommand(code, false, arg, sigFigs)
	_, _, err := c.transact(cmd, replyNone, 0)
	return err
}

// Query 发送查询命令（code + 查询标记）并返回单行原始响应。
// 等待预算耗尽仍无响应时返回空字符串而非错误。
func (c *Client) Query(code string) (string, error) {
	cmd := FormatCommand(code, true, nil, 0)
	line, _, err := c.transact(cmd, replySingle, c.config.Timeout)
	return line, err
}

// Request 发送不带查询标记的命令并读取单行响应，用于 V、+、- 等
// 命令本身即为读取的命令类。arg 为 nil 时不渲染参数段。
func (c *Client) Request(code string, arg any) (string, error) {
	cmd := FormatCommand(code, false, arg, 0)
	line, _, err := c.transact(cmd, replySingle, c.config.Timeout)
	return line, err
}

// Raw 发送任意已编码的命令并在 wait 预算内读取单行响应。
// 主要用于调试与交互式控制台；正常代码应使用类型化访问器。
func (c *Client) Raw(cmd string, wait time.Duration) (string, error) {
	line, _, err := c.transact(cmd, replySingle, wait)
	return line, err
}

// RawMulti 发送任意已编码的命令并读取直到哨兵的多行响应。
func (c *Client) RawMulti(cmd string, wait time.Duration) ([]any, error) {
	_, values, err := c.transact(cmd, replyMulti, wait)
	return values, err
}

// queryFloat 查询并把单行响应解析为 float64。
func (c *Client) queryFloat(code string) (float64, error) {
	line, err := c.Query(code)
	if err != nil {
		return 0, err
	}
	if line == "" {
		return 0, ErrNoReply
	}
	f, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("synthnv: parse reply %q for %s: %w", line, code, err)
	}
	return f, nil
}

// queryInt 查询并把单行响应解析为 int。
func (c *Client) queryInt(code string) (int, error) {
	line, err := c.Query(code)
	if err != nil {
		return 0, err
	}
	if line == "" {
		return 0, ErrNoReply
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("synthnv: parse reply %q for %s: %w", line, code, err)
	}
	return n, nil
}

// queryBool 查询并把单行响应（"0"/"1"）解析为 bool。
func (c *Client) queryBool(code string) (bool, error) {
	n, err := c.queryInt(code)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// log 在配置了日志器时输出调试信息。
func (c *Client) log(format string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug().Msgf(format, args...)
	}
}
