package order

// Role 标记槽位在阶梯中的位置。
type Role string

const (
	RoleFirst  Role = "first"
	RoleMiddle Role = "middle"
	RoleLast   Role = "last"
	RolePump   Role = "pump"
)

// Slot 是一个虚拟订单槽位：本地保存的下单意图，每个 tick 与 venue 的
// 真实订单状态对账。同一时间最多关联一个远端订单。
type Slot struct {
	Index        int
	ID           string // 远端订单 id，空 = 未关联
	Status       Status
	Role         Role
	MakerSize    float64
	MakerSizeMin float64 // 部分成交可接受的最小 maker size
	TakerSize    float64
	BasisPrice   float64 // 下单时使用的行情价
	OrderPrice   float64 // 滑移之后的实际挂单价
	SelfFilled   bool    // takerbot 自成交标记，视同 finished
}

// Release 解除旧的远端关联，槽位准备提交新订单。
// clear 状态本身保留 id（cancel 循环还要用它匹配远端订单），
// 只有在槽位被复用提交前才真正丢弃。
func (s *Slot) Release() {
	s.ID = ""
	s.SelfFilled = false
}

// Assign 将远端下单结果绑定到槽位，并进入 creating 状态。
func (s *Slot) Assign(r RemoteOrder, basisPrice, orderPrice, minSize float64) {
	s.ID = r.ID
	s.Status = StatusCreating
	s.MakerSize = r.MakerSize
	s.TakerSize = r.TakerSize
	s.MakerSizeMin = minSize
	s.BasisPrice = basisPrice
	s.OrderPrice = orderPrice
	s.SelfFilled = false
}
