package gosynthnv

import (
	"fmt"
	"strconv"
)

// FormatCommand 将命令码、查询标志和可选参数渲染为发送给仪器的
// ASCII 字符串。arg 为 nil 时不渲染参数段；float64/float32 按
// sigFigs 位小数的定点格式渲染；int 按十进制渲染；string 与各枚举
// 类型按其码值原样渲染；bool 渲染为 "1"/"0"。query 为 true 时在
// 末尾追加一个查询标记字符。
//
// 查询与参数在实践中互斥。编码器不禁止同时提供两者，但固件对这种
// 组合的语义未有文档，调用方应视之为误用。输出从不包含行终止符。
func FormatCommand(code string, query bool, arg any, sigFigs int) string {
	argStr := formatArg(arg, sigFigs)
	if query {
		return code + argStr + QueryChar
	}
	return code + argStr
}

func formatArg(arg any, sigFigs int) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case float64:
		return FormatFloat(v, sigFigs)
	case float32:
		return FormatFloat(float64(v), sigFigs)
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return v
	case TempCompensation:
		return string(v)
	case RFDetectorMode:
		return string(v)
	case RFMute:
		return string(v)
	case ReferenceSource:
		return string(v)
	case TriggerFunction:
		return string(v)
	case SweepType:
		return string(v)
	case SweepDirection:
		return string(v)
	case SweepDisplayStyle:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// FormatFloat 以定点格式渲染 val，保留 sigFigs 位小数，无论数值
// 大小都不使用科学计数法。超出 sigFigs 的精度被舍入；这是有意的
// 精度截断，不是错误。
func FormatFloat(val float64, sigFigs int) string {
	return strconv.FormatFloat(val, 'f', sigFigs, 64)
}

// ConvertValue 尝试把一行响应解析为 float64；无法解析时原样返回
// 字符串。多行响应因此是异构序列而非纯数值向量。
func ConvertValue(line string) any {
	if f, err := strconv.ParseFloat(line, 64); err == nil {
		return f
	}
	return line
}
