package gosynthnv

import (
	"strings"
	"time"
)

// ResponseClass 表示从仪器读到的一行的分类。
type ResponseClass int

const (
	ResponseEmpty    ResponseClass = iota // 读取超时且无数据
	ResponseData                          // 普通数据行
	ResponseSentinel                      // 多行响应的结束哨兵（EOM.)
	ResponseError                         // 含有错误标记的设备错误行
)

// 分类名称（用于调试）
var responseClassNames = map[ResponseClass]string{
	ResponseEmpty:    "Empty",
	ResponseData:     "Data",
	ResponseSentinel: "Sentinel",
	ResponseError:    "Error",
}

func (rc ResponseClass) String() string {
	if name, ok := responseClassNames[rc]; ok {
		return name
	}
	return "Unknown"
}

// Classify 对一行响应进行分类。空行表示超时无数据；与哨兵完全相同
// 的行为 Sentinel；包含错误标记子串的行为 Error；其余为 Data。
//
// 错误判定是子串匹配，与固件实际行为保持一致：恰好含有 "error"
// 的合法数据行会被误判，但设备的数值与短 token 响应不会出现该
// 子串。
func Classify(line string) ResponseClass {
	switch {
	case line == "":
		return ResponseEmpty
	case line == Sentinel:
		return ResponseSentinel
	case strings.Contains(line, ErrorMarker):
		return ResponseError
	default:
		return ResponseData
	}
}

// CleanErrorMessage 去掉设备错误行的帧字符（$error/ 前缀和 #% 后缀），
// 返回其中的消息文本。无帧字符的行原样返回。
func CleanErrorMessage(line string) string {
	msg := strings.TrimSpace(line)
	msg = strings.TrimPrefix(msg, ErrorPrefix)
	msg = strings.TrimSuffix(msg, ErrorSuffix)
	return strings.TrimSpace(msg)
}

// ReadResponse 执行一次单行读取。先做一次零超时的行读取；若无数据
// 且 wait > 0，则在 wait 壁钟预算内轮询 BytesAvailable，一旦出现
// 字节立即读取一行，读到第一条非空行或预算耗尽为止。返回去掉首尾
// 空白的行，超时无数据时返回空字符串。
//
// 轮询每轮重新检查已消耗的壁钟时间，不依赖底层端口自身的超时。
func (c *Conn) ReadResponse(wait time.Duration) (string, error) {
	line, err := c.ReadLine(0)
	if err != nil {
		return "", err
	}
	if line == "" && wait > 0 {
		start := time.Now()
		for time.Since(start) < wait {
			if c.BytesAvailable() {
				line, err = c.ReadLine(0)
				if err != nil {
					return "", err
				}
			}
			if line != "" {
				break
			}
			time.Sleep(pollInterval)
		}
	}
	return strings.TrimSpace(line), nil
}

// ReadResponses 重复执行单行读取并逐行分类，把数据行按顺序收集起来，
// 直到读到哨兵行（哨兵本身被丢弃，不出现在结果中）或 wait 壁钟预算
// 耗尽（返回已累积的部分结果）。每个数据行会尝试转换为 float64，
// 无法解析时保留为字符串。读到设备错误行时返回 DeviceError 以及
// 之前已累积的数据。
func (c *Conn) ReadResponses(wait time.Duration) ([]any, error) {
	var values []any
	deadline := time.Now().Add(wait)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return values, nil
		}
		line, err := c.ReadResponse(remaining)
		if err != nil {
			return values, err
		}
		switch Classify(line) {
		case ResponseSentinel:
			return values, nil
		case ResponseError:
			return values, NewDeviceError("", line)
		case ResponseData:
			values = append(values, ConvertValue(line))
		case ResponseEmpty:
			// 预算内暂时无数据，继续等
		}
	}
}
