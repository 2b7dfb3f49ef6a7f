// Package gosynthnv 实现 Windfreak SynthNV Pro 信号发生器的
// 串口命令/响应协议，用于通过 USB 串口设置和查询仪器参数。
package gosynthnv

// 协议常量
const (
	// 查询标记字符，追加在命令末尾表示查询
	QueryChar = "?"

	// 多行响应的结束哨兵行
	Sentinel = "EOM."

	// 错误行包含的标记子串
	ErrorMarker = "error"

	// 错误行的帧前缀与后缀（$error/<message>#%）
	ErrorPrefix = "$error/"
	ErrorSuffix = "#%"

	// 浮点参数的默认小数位数
	DefaultSigFigs = 7

	// 功率类命令（W、[、]）的小数位数
	PowerSigFigs = 3

	// 默认波特率（USB CDC，波特率实际不影响吞吐）
	DefaultBaudRate = 2000000
)

// 命令码（设备手册第 2 章）
const (
	CmdFrequency          = "f" // RF 频率（MHz，0.1Hz 分辨率）
	CmdPower              = "W" // RF 输出功率（dBm，0.001dB 分辨率）
	CmdCalSuccess         = "V" // 查询上次校准是否成功
	CmdTempCompensation   = "Z" // 温度补偿方式
	CmdPowerDetector      = "w" // 读取 RFin 功率检测器（多行响应）
	CmdDetectorMode       = "&" // 功率检测器工作模式
	CmdRawDAC             = "a" // 原始 VGA DAC 值
	CmdPhaseStep          = "~" // 相位增量（度，相对调整）
	CmdRFMute             = "h" // 输出静默
	CmdPLLEnable          = "E" // PLL/VCO 上电
	CmdChargePumpCurrent  = "U" // PLL 电荷泵电流
	CmdReferenceDoubler   = "D" // 参考倍频器
	CmdChannelSpacing     = "i" // 信道间隔（Hz）
	CmdSaveEEPROM         = "e" // 保存当前设置到非易失存储
	CmdReferenceSource    = "x" // 参考源选择
	CmdReferenceFrequency = "*" // PLL 参考频率（MHz）
	CmdTriggerFunction    = "y" // 触发连接器功能
	CmdSweepLower         = "l" // 线性扫描下限频率（MHz）
	CmdSweepUpper         = "u" // 线性扫描上限频率（MHz）
	CmdSweepStep          = "s" // 线性扫描步进频率（MHz）
	CmdSweepTime          = "t" // 线性扫描步进时间
	CmdSweepPowerLow      = "[" // 扫描下限频率处的功率（dBm）
	CmdSweepPowerHigh     = "]" // 扫描上限频率处的功率（dBm）
	CmdSweepDirection     = "^" // 扫描方向
	CmdSweepType          = "X" // 扫描类型
	CmdReadWhileSweep     = "r" // 扫描期间是否测量功率检测器
	CmdSweepDisplayStyle  = "d" // 扫描期间的数据回显样式
	CmdRunSweep           = "g" // 启动/暂停扫描
	CmdSweepContinuous    = "c" // 连续扫描
	CmdTemperature        = "z" // 内部温度（摄氏度）
	CmdVersion            = "v" // 固件/硬件版本
	CmdModelType          = "+" // 型号字符串
	CmdSerialNumber       = "-" // 序列号
)

// TempCompensation 表示温度补偿方式（Z 命令）。
type TempCompensation string

const (
	TempCompNone  TempCompensation = "0" // 不补偿
	TempCompOnSet TempCompensation = "1" // 仅在设置频率或功率时补偿
	TempComp1Sec  TempCompensation = "2" // 设置时补偿并每 1 秒自动补偿
	TempComp10Sec TempCompensation = "3" // 设置时补偿并每 10 秒自动补偿（默认）
)

// RFDetectorMode 表示功率检测器的测量模式（& 命令）。
type RFDetectorMode string

const (
	DetectorInstantaneous RFDetectorMode = "0" // 无平均，适合 CW 信号（已校准）
	DetectorLowPass       RFDetectorMode = "1" // RC 低通平均，时间常数 5.6ms（已校准）
	DetectorExperimental  RFDetectorMode = "2" // 二极管峰值保持，实验性（未校准）
)

// RFMute 表示输出静默状态（h 命令）。注意 1 为不静默。
type RFMute string

const (
	RFNotMuted RFMute = "1"
	RFMuted    RFMute = "0"
)

// ReferenceSource 表示 PLL 参考源（x 命令）。
type ReferenceSource string

const (
	RefExternal      ReferenceSource = "0"
	RefInternal27MHz ReferenceSource = "1"
	RefInternal10MHz ReferenceSource = "2"
)

// TriggerFunction 表示触发连接器的功能（y 命令）。
type TriggerFunction string

const (
	TriggerNone         TriggerFunction = "0" // 无触发
	TriggerFullSweep    TriggerFunction = "1" // 触发完整频率扫描
	TriggerSingleStep   TriggerFunction = "2" // 触发单步频率
	TriggerStopAll      TriggerFunction = "3" // 暂停所有序列功能
	TriggerRFOnOff      TriggerFunction = "4" // 数字 RF 开/关（可用作外部脉冲调制）
	TriggerNoInterrupts TriggerFunction = "5" // 移除中断（减小调制抖动，慎用）
	TriggerReserved1    TriggerFunction = "6"
	TriggerReserved2    TriggerFunction = "7"
	TriggerExternalAM   TriggerFunction = "8" // 外部 AM 调制输入
	TriggerExternalFM   TriggerFunction = "9" // 外部 FM 调制输入
)

// SweepType 表示扫描类型（X 命令）。
type SweepType string

const (
	SweepLinear     SweepType = "0" // 线性扫描
	SweepTabular    SweepType = "1" // 表格扫描（500 点频率/功率跳变）
	SweepPercentage SweepType = "2" // 按频率百分比扫描
)

// SweepDirection 表示扫描方向（^ 命令）。
type SweepDirection string

const (
	SweepDown SweepDirection = "0" // 从上限频率到下限频率（表格扫描时为逆序）
	SweepUp   SweepDirection = "1" // 从下限频率到上限频率
)

// SweepDisplayStyle 表示扫描期间的数据回显样式（d 命令）。
type SweepDisplayStyle string

const (
	DisplayNone         SweepDisplayStyle = "0" // 不回显
	DisplayFreqAndPower SweepDisplayStyle = "1" // 回显频率与功率
	DisplayPowerOnly    SweepDisplayStyle = "2" // 仅回显功率
)
