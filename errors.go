package gosynthnv

import (
	"errors"
	"fmt"
)

// 标准错误
var (
	ErrClosed       = errors.New("synthnv: connection closed")
	ErrNoReply      = errors.New("synthnv: no reply within wait budget")
	ErrUnknownParam = errors.New("synthnv: unknown parameter")
	ErrReadOnly     = errors.New("synthnv: parameter is read-only")
)

// ConnError 表示底层串口故障：无法打开、读写失败，或缓冲区复位
// 失败且按原参数重新打开也失败。对该连接实例而言是致命的，调用方
// 应丢弃连接后重新 Open。
type ConnError struct {
	Op   string // open / read / write / reset
	Addr string
	Err  error
}

func (e *ConnError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("synthnv: %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("synthnv: %s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// IsConnError 检查 err 是否为 ConnError。
func IsConnError(err error) bool {
	var ce *ConnError
	return errors.As(err, &ce)
}

// DeviceError 表示仪器自身报告的错误行（$error/<message>#%）。
// 设备错误不是传输故障；通常修正命令后重试即可恢复。
type DeviceError struct {
	Command string // 触发错误的命令（已编码形式，可能为空）
	Message string // 去掉帧字符后的错误消息
}

func (e *DeviceError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("synthnv: device error for %q: %s", e.Command, e.Message)
	}
	return fmt.Sprintf("synthnv: device error: %s", e.Message)
}

// NewDeviceError 从原始错误行创建 DeviceError，帧字符已剥离。
func NewDeviceError(command, line string) *DeviceError {
	return &DeviceError{
		Command: command,
		Message: CleanErrorMessage(line),
	}
}

// IsDeviceError 检查 err 是否为 DeviceError。
func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}

// ValidationError 表示调用方提供的值超出了参数的合法域。
// 校验在任何字节发送到仪器之前完成。
type ValidationError struct {
	Param  Param
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("synthnv: invalid value %v for %s: %s", e.Value, e.Param, e.Reason)
}

// IsValidationError 检查 err 是否为 ValidationError。
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
