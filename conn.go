package gosynthnv

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

// 单行读取轮询间隔
const pollInterval = 500 * time.Microsecond

// 每次底层读取的缓冲大小
const readChunkSize = 256

// Port 抽象底层串口，便于测试时替换为模拟实现。
// go.bug.st/serial 的 Port 满足此接口。
type Port interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	ResetOutputBuffer() error
	Close() error
}

// Conn 封装与仪器之间的串口连接，提供按行读取、缓冲区复位和
// 一次性的故障恢复。Conn 不含任何协议语义——字节和行的搬运在这里，
// 命令、分类与事务在 Client 中。
type Conn struct {
	mu   sync.Mutex // 保护 port、pending 和 closed
	port Port

	address string
	timeout time.Duration

	// dial 按原参数重新打开端口，用于 ResetBuffers 的故障恢复。
	// 通过 NewConn 注入模拟端口时为 nil，恢复路径直接失败。
	dial func() (Port, error)

	// 已从端口读出、尚未按行消费的字节
	pending []byte
	rbuf    [readChunkSize]byte

	closed bool

	logger *zerolog.Logger
}

// Open 以 8 数据位、1 停止位、无校验打开串口连接。
// readTimeout 是单次行读取的默认超时。
func Open(address string, baud int, readTimeout time.Duration) (*Conn, error) {
	return OpenWithLogger(address, baud, readTimeout, nil)
}

// OpenWithLogger 与 Open 相同，并注入调试日志器（nil 禁用日志）。
func OpenWithLogger(address string, baud int, readTimeout time.Duration, logger *zerolog.Logger) (*Conn, error) {
	dial := func() (Port, error) {
		mode := &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
		return serial.Open(address, mode)
	}
	port, err := dial()
	if err != nil {
		return nil, &ConnError{Op: "open", Addr: address, Err: err}
	}
	c := &Conn{
		port:    port,
		address: address,
		timeout: readTimeout,
		dial:    dial,
		logger:  logger,
	}
	c.log("connected to %s at %d baud", address, baud)
	return c, nil
}

// NewConn 用给定的 Port 创建 Conn，主要供测试注入模拟端口。
// 正常使用请通过 Open。
func NewConn(port Port, readTimeout time.Duration) *Conn {
	return &Conn{
		port:    port,
		timeout: readTimeout,
	}
}

// ResetBuffers 丢弃读写两个方向上已缓冲的字节，保证上一次未读完的
// 响应不会混入下一次事务。若底层丢弃操作本身失败（驱动级 I/O 故障），
// 按原参数关闭并重新打开串口作为恢复手段；重新打开也失败时返回
// ConnError，该连接实例不可再用。
func (c *Conn) ResetBuffers() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.pending = c.pending[:0]

	err := c.port.ResetInputBuffer()
	if err == nil {
		err = c.port.ResetOutputBuffer()
	}
	if err == nil {
		return nil
	}

	// 恢复：关闭并重新打开
	c.log("failed to reset buffers: %v, reopening", err)
	c.port.Close()
	if c.dial == nil {
		c.closed = true
		return &ConnError{Op: "reset", Addr: c.address, Err: err}
	}
	port, rerr := c.dial()
	if rerr != nil {
		c.closed = true
		return &ConnError{Op: "reset", Addr: c.address, Err: rerr}
	}
	c.port = port
	return nil
}

// Write 阻塞写入全部字节。不附加任何行终止符；需要终止符时由
// 调用方自行嵌入。
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.log("send: %q", data)
	for len(data) > 0 {
		n, err := c.port.Write(data)
		if err != nil {
			return &ConnError{Op: "write", Addr: c.address, Err: err}
		}
		data = data[n:]
	}
	return nil
}

// ReadLine 读取一行，直到读到换行符或 timeout 耗尽。返回去掉行
// 终止符（\r\n）的行；超时前未凑齐完整行时返回空字符串，已到的
// 字节保留在内部缓冲中供下次读取。
func (c *Conn) ReadLine(timeout time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrClosed
	}

	deadline := time.Now().Add(timeout)
	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			line := strings.TrimRight(string(c.pending[:i]), "\r")
			c.pending = c.pending[i+1:]
			c.log("recv: %q", line)
			return line, nil
		}

		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		n, err := c.fill(remaining)
		if err != nil {
			return "", err
		}
		if n == 0 {
			// 超时内端口未给出任何新字节
			return "", nil
		}
	}
}

// BytesAvailable 非阻塞地检查是否有已缓冲、尚未消费的字节。
func (c *Conn) BytesAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	if len(c.pending) > 0 {
		return true
	}
	n, err := c.fill(0)
	return err == nil && n > 0
}

// fill 在 timeout 内最多执行一次底层读取，读到的字节追加到 pending。
// 必须在持有 c.mu 时调用。
func (c *Conn) fill(timeout time.Duration) (int, error) {
	if err := c.port.SetReadTimeout(timeout); err != nil {
		return 0, &ConnError{Op: "read", Addr: c.address, Err: err}
	}
	n, err := c.port.Read(c.rbuf[:])
	if n > 0 {
		c.pending = append(c.pending, c.rbuf[:n]...)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, &ConnError{Op: "read", Addr: c.address, Err: err}
	}
	return n, nil
}

// Timeout 返回单次行读取的默认超时。
func (c *Conn) Timeout() time.Duration {
	return c.timeout
}

// Close 关闭底层串口。可重复调用。
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.log("disconnected")
	return c.port.Close()
}

// log 在配置了日志器时输出调试信息。
func (c *Conn) log(format string, args ...any) {
	if c.logger != nil {
		c.logger.Debug().Msgf(format, args...)
	}
}
