// internal/service/seckill/domain/state.go
package domain

// ExecutionState 是秒杀执行状态机的终态标签。
// 数值与存储过程/脚本返回的状态码保持一致，便于 StateOf 直接映射
type ExecutionState int

const (
	StateEnd          ExecutionState = 0  // 库存售罄或窗口已过
	StateSuccess      ExecutionState = 1  // 秒杀成功
	StateRepeatKill   ExecutionState = -1 // 同一用户重复秒杀
	StateInnerError   ExecutionState = -2 // 未预期的存储/传输故障
	StateInvalidToken ExecutionState = -3 // 口令缺失或被篡改
)

var stateInfos = map[ExecutionState]string{
	StateSuccess:      "秒杀成功",
	StateEnd:          "秒杀结束",
	StateRepeatKill:   "重复秒杀",
	StateInnerError:   "系统异常",
	StateInvalidToken: "数据篡改",
}

func (s ExecutionState) String() string {
	switch s {
	case StateSuccess:
		return "SUCCESS"
	case StateEnd:
		return "END"
	case StateRepeatKill:
		return "REPEAT_KILL"
	case StateInnerError:
		return "INNER_ERROR"
	case StateInvalidToken:
		return "INVALID_TOKEN"
	default:
		return "UNKNOWN"
	}
}

// Info 返回面向用户的状态描述
func (s ExecutionState) Info() string {
	if info, ok := stateInfos[s]; ok {
		return info
	}
	return stateInfos[StateInnerError]
}

// StateOf 将外部过程返回的状态码映射为终态，未知码一律按系统异常处理
func StateOf(code int) ExecutionState {
	switch ExecutionState(code) {
	case StateSuccess, StateEnd, StateRepeatKill, StateInvalidToken:
		return ExecutionState(code)
	default:
		return StateInnerError
	}
}
