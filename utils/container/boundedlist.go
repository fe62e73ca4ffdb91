package container

// BoundedList 固定容量有序列表
// 功能：以数组为后备存储的有界ID列表，供Edge占用队列使用
// 说明：容量在创建时固定，热路径上所有操作均不分配内存
type BoundedList[T comparable] struct {
	data  []T // 后备数组，长度即容量
	count int // 当前元素数
}

// NewBoundedList 创建固定容量列表
// 参数：capacity-列表容量
func NewBoundedList[T comparable](capacity int) *BoundedList[T] {
	return &BoundedList[T]{data: make([]T, capacity)}
}

// Len 获取当前元素数
func (l *BoundedList[T]) Len() int {
	return l.count
}

// Cap 获取列表容量
func (l *BoundedList[T]) Cap() int {
	return len(l.data)
}

// Contains 判断元素是否在列表中
func (l *BoundedList[T]) Contains(v T) bool {
	for i := 0; i < l.count; i++ {
		if l.data[i] == v {
			return true
		}
	}
	return false
}

// Add 向列表尾部添加元素
// 功能：添加元素，重复元素与超容插入均被拒绝
// 返回：true表示已添加；false表示元素已存在或容量已满
// 说明：重复添加是无操作；容量事件由调用方记录日志
func (l *BoundedList[T]) Add(v T) bool {
	if l.Contains(v) {
		return false
	}
	if l.count >= len(l.data) {
		return false
	}
	l.data[l.count] = v
	l.count++
	return true
}

// Remove 从列表中移除元素
// 功能：移除指定元素，后续元素前移补位，保持相对顺序
// 返回：true表示已移除；false表示元素不存在
func (l *BoundedList[T]) Remove(v T) bool {
	for i := 0; i < l.count; i++ {
		if l.data[i] == v {
			copy(l.data[i:l.count-1], l.data[i+1:l.count])
			l.count--
			var zero T
			l.data[l.count] = zero
			return true
		}
	}
	return false
}

// Values 获取当前元素的切片视图
// 说明：返回后备数组的子切片，调用方不得越过当前tick持有
func (l *BoundedList[T]) Values() []T {
	return l.data[:l.count]
}

// SortDesc 按键值降序重排列表
// 功能：以插入排序重排元素，键值最大者在前
// 参数：key-元素到键值的映射（通常为车辆在Edge上的实时比例位置）
// 说明：容量小且元素接近有序，插入排序的O(n^2)上界可接受
func (l *BoundedList[T]) SortDesc(key func(T) float64) {
	for i := 1; i < l.count; i++ {
		v := l.data[i]
		k := key(v)
		j := i - 1
		for j >= 0 && key(l.data[j]) < k {
			l.data[j+1] = l.data[j]
			j--
		}
		l.data[j+1] = v
	}
}

// Clear 清空列表
func (l *BoundedList[T]) Clear() {
	var zero T
	for i := 0; i < l.count; i++ {
		l.data[i] = zero
	}
	l.count = 0
}
