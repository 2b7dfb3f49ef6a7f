package gosynthnv

import (
	"fmt"
	"strconv"
)

// ParamKind 描述参数值的类型与编码方式。
type ParamKind int

const (
	KindFloat  ParamKind = iota // 定点小数
	KindInt                     // 十进制整数
	KindBool                    // 0/1 开关
	KindEnum                    // 单字符枚举码
	KindString                  // 原样字符串（只读参数）
)

// Param 标识一个设备参数。
type Param string

const (
	ParamFrequency          Param = "frequency"
	ParamPower              Param = "power"
	ParamCalSuccess         Param = "cal_success"
	ParamTempCompensation   Param = "temp_compensation"
	ParamPowerDetector      Param = "power_detector"
	ParamDetectorMode       Param = "detector_mode"
	ParamRawDAC             Param = "raw_dac"
	ParamPhaseStep          Param = "phase_step"
	ParamRFMute             Param = "rf_mute"
	ParamPLLEnable          Param = "pll_enable"
	ParamChargePumpCurrent  Param = "charge_pump_current"
	ParamReferenceDoubler   Param = "reference_doubler"
	ParamChannelSpacing     Param = "channel_spacing"
	ParamReferenceSource    Param = "reference_source"
	ParamReferenceFrequency Param = "reference_frequency"
	ParamTriggerFunction    Param = "trigger_function"
	ParamSweepLower         Param = "sweep_lower"
	ParamSweepUpper         Param = "sweep_upper"
	ParamSweepStep          Param = "sweep_step"
	ParamSweepTime          Param = "sweep_time"
	ParamSweepPowerLow      Param = "sweep_power_low"
	ParamSweepPowerHigh     Param = "sweep_power_high"
	ParamSweepDirection     Param = "sweep_direction"
	ParamSweepType          Param = "sweep_type"
	ParamReadWhileSweep     Param = "read_while_sweep"
	ParamSweepDisplayStyle  Param = "sweep_display_style"
	ParamRunSweep           Param = "run_sweep"
	ParamSweepContinuous    Param = "sweep_continuous"
	ParamTemperature        Param = "temperature"
	ParamVersion            Param = "version"
	ParamModelType          Param = "model_type"
	ParamSerialNumber       Param = "serial_number"
)

// ParamSpec 描述一个参数如何编码、校验与解码。
type ParamSpec struct {
	Code    string    // 命令码
	Kind    ParamKind // 值类型
	SigFigs int       // Kind 为 KindFloat 时的小数位数
	Min     float64   // 数值下界（含）
	Max     float64   // 数值上界（含）
	Ranged  bool      // 是否做范围校验
	Enum    []string  // Kind 为 KindEnum 时允许的码
	Multi   bool      // 响应为多行，以 EOM. 结束
	RO      bool      // 只读参数，Set 拒绝
	Bare    bool      // 读取时发送命令码本身，不带查询标记
}

// paramTable 把每个参数映射到它的命令码、值域与响应形状。
// 逐参数的范围来自设备手册；Client 按此表通用地解释 Get/Set，
// 校验在任何字节上线之前完成。
var paramTable = map[Param]ParamSpec{
	ParamFrequency:          {Code: CmdFrequency, Kind: KindFloat, SigFigs: DefaultSigFigs, Min: 12.5, Max: 6400, Ranged: true},
	ParamPower:              {Code: CmdPower, Kind: KindFloat, SigFigs: PowerSigFigs, Min: -60, Max: 20, Ranged: true},
	ParamCalSuccess:         {Code: CmdCalSuccess, Kind: KindBool, RO: true, Bare: true},
	ParamTempCompensation:   {Code: CmdTempCompensation, Kind: KindEnum, Enum: []string{"0", "1", "2", "3"}},
	ParamPowerDetector:      {Code: CmdPowerDetector, Kind: KindFloat, Multi: true, RO: true, Bare: true},
	ParamDetectorMode:       {Code: CmdDetectorMode, Kind: KindEnum, Enum: []string{"0", "1", "2"}},
	ParamRawDAC:             {Code: CmdRawDAC, Kind: KindInt, Min: 0, Max: 4000, Ranged: true},
	ParamPhaseStep:          {Code: CmdPhaseStep, Kind: KindFloat, SigFigs: DefaultSigFigs},
	ParamRFMute:             {Code: CmdRFMute, Kind: KindEnum, Enum: []string{"0", "1"}},
	ParamPLLEnable:          {Code: CmdPLLEnable, Kind: KindBool},
	ParamChargePumpCurrent:  {Code: CmdChargePumpCurrent, Kind: KindInt, Min: 1, Max: 15, Ranged: true},
	ParamReferenceDoubler:   {Code: CmdReferenceDoubler, Kind: KindBool},
	ParamChannelSpacing:     {Code: CmdChannelSpacing, Kind: KindFloat, SigFigs: DefaultSigFigs, Min: 0.1, Max: 1000, Ranged: true},
	ParamReferenceSource:    {Code: CmdReferenceSource, Kind: KindEnum, Enum: []string{"0", "1", "2"}},
	ParamReferenceFrequency: {Code: CmdReferenceFrequency, Kind: KindFloat, SigFigs: DefaultSigFigs, Min: 10, Max: 100, Ranged: true},
	ParamTriggerFunction:    {Code: CmdTriggerFunction, Kind: KindEnum, Enum: []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}},
	ParamSweepLower:         {Code: CmdSweepLower, Kind: KindFloat, SigFigs: DefaultSigFigs, Min: 12.5, Max: 6400, Ranged: true},
	ParamSweepUpper:         {Code: CmdSweepUpper, Kind: KindFloat, SigFigs: DefaultSigFigs, Min: 12.5, Max: 6400, Ranged: true},
	ParamSweepStep:          {Code: CmdSweepStep, Kind: KindFloat, SigFigs: DefaultSigFigs},
	ParamSweepTime:          {Code: CmdSweepTime, Kind: KindFloat, SigFigs: DefaultSigFigs},
	ParamSweepPowerLow:      {Code: CmdSweepPowerLow, Kind: KindFloat, SigFigs: PowerSigFigs, Min: -50, Max: 20, Ranged: true},
	ParamSweepPowerHigh:     {Code: CmdSweepPowerHigh, Kind: KindFloat, SigFigs: PowerSigFigs, Min: -50, Max: 20, Ranged: true},
	ParamSweepDirection:     {Code: CmdSweepDirection, Kind: KindEnum, Enum: []string{"0", "1"}},
	ParamSweepType:          {Code: CmdSweepType, Kind: KindEnum, Enum: []string{"0", "1", "2"}},
	ParamReadWhileSweep:     {Code: CmdReadWhileSweep, Kind: KindBool},
	ParamSweepDisplayStyle:  {Code: CmdSweepDisplayStyle, Kind: KindEnum, Enum: []string{"0", "1", "2"}},
	ParamRunSweep:           {Code: CmdRunSweep, Kind: KindBool},
	ParamSweepContinuous:    {Code: CmdSweepContinuous, Kind: KindBool},
	ParamTemperature:        {Code: CmdTemperature, Kind: KindFloat, RO: true},
	ParamVersion:            {Code: CmdVersion, Kind: KindString, RO: true, Bare: true},
	ParamModelType:          {Code: CmdModelType, Kind: KindString, RO: true, Bare: true},
	ParamSerialNumber:       {Code: CmdSerialNumber, Kind: KindString, RO: true, Bare: true},
}

// Spec 返回参数的描述表项。
func Spec(p Param) (ParamSpec, bool) {
	spec, ok := paramTable[p]
	return spec, ok
}

// Set 校验并设置一个参数。数值参数接受 float64 或 int；开关参数
// 接受 bool；枚举参数接受码字符串或相应的枚举类型。值超出参数的
// 合法域时返回 ValidationError，且不会有任何字节发送到仪器。
func (c *Client) Set(p Param, value any) error {
	spec, ok := paramTable[p]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, p)
	}
	if spec.RO {
		return fmt.Errorf("%w: %s", ErrReadOnly, p)
	}

	switch spec.Kind {
	case KindFloat:
		f, ok := toFloat(value)
		if !ok {
			return &ValidationError{Param: p, Value: value, Reason: "expected a numeric value"}
		}
		if spec.Ranged && (f < spec.Min || f > spec.Max) {
			return &ValidationError{Param: p, Value: value,
				Reason: fmt.Sprintf("must be between %g and %g", spec.Min, spec.Max)}
		}
		return c.Exec(spec.Code, f, spec.SigFigs)

	case KindInt:
		n, ok := value.(int)
		if !ok {
			return &ValidationError{Param: p, Value: value, Reason: "expected an int"}
		}
		if spec.Ranged && (float64(n) < spec.Min || float64(n) > spec.Max) {
			return &ValidationError{Param: p, Value: value,
				Reason: fmt.Sprintf("must be between %g and %g", spec.Min, spec.Max)}
		}
		return c.Exec(spec.Code, n, 0)

	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return &ValidationError{Param: p, Value: value, Reason: "expected a bool"}
		}
		return c.Exec(spec.Code, b, 0)

	case KindEnum:
		code := formatArg(value, 0)
		for _, allowed := range spec.Enum {
			if code == allowed {
				return c.Exec(spec.Code, code, 0)
			}
		}
		return &ValidationError{Param: p, Value: value,
			Reason: fmt.Sprintf("must be one of %v", spec.Enum)}

	default:
		return &ValidationError{Param: p, Value: value, Reason: "parameter cannot be set"}
	}
}

// Get 查询一个参数并按其类型解码：KindFloat 返回 float64，KindInt
// 返回 int，KindBool 返回 bool，KindEnum 返回码字符串，KindString
// 返回原始行。等待预算耗尽仍无响应时返回 ErrNoReply。
func (c *Client) Get(p Param) (any, error) {
	spec, ok := paramTable[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParam, p)
	}
	if spec.Multi {
		return nil, fmt.Errorf("synthnv: %s is a multi-reply parameter, use GetMulti", p)
	}

	var line string
	var err error
	if spec.Bare {
		line, err = c.Request(spec.Code, nil)
	} else {
		line, err = c.Query(spec.Code)
	}
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, ErrNoReply
	}

	switch spec.Kind {
	case KindFloat:
		f, perr := strconv.ParseFloat(line, 64)
		if perr != nil {
			return nil, fmt.Errorf("synthnv: parse reply %q for %s: %w", line, p, perr)
		}
		return f, nil
	case KindInt:
		n, perr := strconv.Atoi(line)
		if perr != nil {
			return nil, fmt.Errorf("synthnv: parse reply %q for %s: %w", line, p, perr)
		}
		return n, nil
	case KindBool:
		n, perr := strconv.Atoi(line)
		if perr != nil {
			return nil, fmt.Errorf("synthnv: parse reply %q for %s: %w", line, p, perr)
		}
		return n != 0, nil
	case KindEnum:
		return line, nil
	default:
		return line, nil
	}
}

// GetMulti 读取多行响应参数的 count 个样本（如功率检测器），返回
// 哨兵之前的全部数据行。count <= 1 时发送裸命令码，设备返回单个
// 样本。总预算为 MultiTimeout；预算耗尽时返回已累积的部分结果。
func (c *Client) GetMulti(p Param, count int) ([]any, error) {
	spec, ok := paramTable[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParam, p)
	}
	if !spec.Multi {
		return nil, fmt.Errorf("synthnv: %s is not a multi-reply parameter", p)
	}

	var arg any
	if count > 1 {
		arg = count
	}
	cmd := FormatCommand(spec.Code, false, arg, 0)
	_, values, err := c.transact(cmd, replyMulti, c.config.MultiTimeout)
	return values, err
}

// GetFloat 是 Get 的便捷形式，用于 KindFloat 参数。
func (c *Client) GetFloat(p Param) (float64, error) {
	v, err := c.Get(p)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("synthnv: %s is not a float parameter", p)
	}
	return f, nil
}

// GetBool 是 Get 的便捷形式，用于 KindBool 参数。
func (c *Client) GetBool(p Param) (bool, error) {
	v, err := c.Get(p)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("synthnv: %s is not a bool parameter", p)
	}
	return b, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// SetFrequency 设置 RF 输出频率（MHz）。可设置范围 12.5–6400MHz，
// 分辨率 0.1Hz。
func (c *Client) SetFrequency(mhz float64) error {
	return c.Set(ParamFrequency, mhz)
}

// Frequency 查询当前 RF 输出频率（MHz）。
func (c *Client) Frequency() (float64, error) {
	return c.GetFloat(ParamFrequency)
}

// SetPower 设置 RF 输出功率（dBm）。可设置范围 -60 到 +20dBm，
// 具体取决于频率；仪器会自动校准并尽量接近请求值。
func (c *Client) SetPower(dbm float64) error {
	return c.Set(ParamPower, dbm)
}

// Power 查询当前 RF 输出功率设置（dBm）。
func (c *Client) Power() (float64, error) {
	return c.GetFloat(ParamPower)
}

// CalibrationSuccessful 查询上次设置频率或功率后校准例程是否成功。
// 成功表示输出应当准确且平坦。
func (c *Client) CalibrationSuccessful() (bool, error) {
	return c.GetBool(ParamCalSuccess)
}

// SetTempCompensation 设置温度补偿方式。调制期间补偿例程暂停，
// 调制关闭后恢复。
func (c *Client) SetTempCompensation(method TempCompensation) error {
	return c.Set(ParamTempCompensation, method)
}

// SetDetectorMode 设置功率检测器的测量模式。
func (c *Client) SetDetectorMode(mode RFDetectorMode) error {
	return c.Set(ParamDetectorMode, mode)
}

// SetRFMute 设置输出静默。静默不完全关断 PLL，衰减量随频率变化。
func (c *Client) SetRFMute(mute RFMute) error {
	return c.Set(ParamRFMute, mute)
}

// SetPLLEnable 控制 PLL 与 VCO 上电。下电可获得输出连接器上的
// 最低噪声，重新上电最多需要 20ms。
func (c *Client) SetPLLEnable(enable bool) error {
	return c.Set(ParamPLLEnable, enable)
}

// PLLEnabled 查询 PLL 是否上电。
func (c *Client) PLLEnabled() (bool, error) {
	return c.queryBool(CmdPLLEnable)
}

// PhaseStep 发送相对相位增量（度）。该调整累加到当前相位上，
// 没有读回绝对相位的途径；重启或改变频率都会把相位复位为任意值。
func (c *Client) PhaseStep(degrees float64) error {
	return c.Set(ParamPhaseStep, degrees)
}

// SetReferenceSource 选择 PLL 参考源。选择内部参考时参考频率
// 会被自动设置。
func (c *Client) SetReferenceSource(source ReferenceSource) error {
	return c.Set(ParamReferenceSource, source)
}

// SetReferenceFrequency 设置外部参考频率（MHz），范围 10.0–100.0MHz。
func (c *Client) SetReferenceFrequency(mhz float64) error {
	return c.Set(ParamReferenceFrequency, mhz)
}

// ReferenceFrequency 查询参考频率（MHz）。
func (c *Client) ReferenceFrequency() (float64, error) {
	return c.GetFloat(ParamReferenceFrequency)
}

// ReadPowerDetector 在 RFin 连接器上测量 RF 功率 n 次（dBm）。
// 设备逐行返回每次测量值，最后以 EOM. 结束；n <= 1 时返回单次
// 测量。检测器使用 RF 发生器当前的频率设置作为校准频率；不同时
// 使用发生器时先关闭它（PLL 下电）可获得最大动态范围。
func (c *Client) ReadPowerDetector(n int) ([]float64, error) {
	values, err := c.GetMulti(ParamPowerDetector, n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := v.(float64)
		if !ok {
			return out, fmt.Errorf("synthnv: unexpected detector reply %v", v)
		}
		out = append(out, f)
	}
	return out, nil
}

// RunSweep 启动一次扫描。连续扫描未开启时扫描结束后自动停止；
// 开启时扫描会一直重复，用 Set(ParamRunSweep, false) 暂停。
func (c *Client) RunSweep() error {
	return c.Exec(CmdRunSweep, nil, 0)
}

// SaveToEEPROM 把当前全部设置写入非易失存储，作为上电默认状态。
// 发送前确认仪器处于期望的状态；查找表（扫描、FM、AM）可能不被保存。
func (c *Client) SaveToEEPROM() error {
	return c.Exec(CmdSaveEEPROM, nil, 0)
}

// Temperature 查询仪器内部温度（摄氏度）。
func (c *Client) Temperature() (float64, error) {
	return c.queryFloat(CmdTemperature)
}

// FirmwareVersion 查询固件版本字符串。
func (c *Client) FirmwareVersion() (string, error) {
	return c.Request(CmdVersion, 0)
}

// HardwareVersion 查询硬件版本字符串。
func (c *Client) HardwareVersion() (string, error) {
	return c.Request(CmdVersion, 1)
}

// ModelType 查询型号字符串，形如 "WFT SynthNVP 55"。
func (c *Client) ModelType() (string, error) {
	return c.Request(CmdModelType, nil)
}

// SerialNumber 查询唯一序列号，与仪器底部标签上的数字一致。
func (c *Client) SerialNumber() (string, error) {
	return c.Request(CmdSerialNumber, nil)
}
