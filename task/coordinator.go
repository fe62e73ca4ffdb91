package task

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/vosui/vps-go/entity"
	"github.com/vosui/vps-go/fab"
	"github.com/vosui/vps-go/utils/config"
	"github.com/vosui/vps-go/utils/input"
)

// Coordinator 多Fab协调器
// 功能：按配置构建全部Fab分区，将它们调度到固定的工作线程上
// 推进，并维护合成渲染视图与致命事件的汇聚通道
// 说明：Fab与工作线程的绑定在启动时确定且不再变化，
// 一个Fab的全部状态始终由同一线程访问
type Coordinator struct {
	cfg *config.RuntimeConfig

	fabs   []*fab.Fab
	byName map[string]*fab.Fab
	view   *RenderView
	fatals chan entity.FatalEvent

	workers int
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped atomic.Bool
}

// NewCoordinator 按配置创建协调器
// 功能：加载地图与车辆计划，构建全部Fab，分配渲染区段与工作线程
// 参数：c-根配置
// 返回：初始化完成的协调器与错误信息
func NewCoordinator(c config.Config) (*Coordinator, error) {
	if len(c.Fabs) == 0 {
		return nil, fmt.Errorf("no fabs configured")
	}
	rc := config.NewRuntimeConfig(c)

	var sharedMap *input.MapData
	if c.Map != nil {
		m, err := input.LoadMapData(*c.Map)
		if err != nil {
			return nil, err
		}
		sharedMap = m
	}

	co := &Coordinator{
		cfg:    rc,
		byName: make(map[string]*fab.Fab, len(c.Fabs)),
		fatals: make(chan entity.FatalEvent, len(c.Fabs)*4),
		stopCh: make(chan struct{}),
	}

	for i, fc := range c.Fabs {
		if _, ok := co.byName[fc.Name]; ok {
			return nil, fmt.Errorf("duplicate fab name %q", fc.Name)
		}
		mapData := sharedMap
		if fc.Map != nil {
			m, err := input.LoadMapData(*fc.Map)
			if err != nil {
				return nil, fmt.Errorf("fab %s: %w", fc.Name, err)
			}
			mapData = m
		}
		if mapData == nil {
			return nil, fmt.Errorf("fab %s has no map data", fc.Name)
		}
		plan := &input.Plan{}
		if fc.Plan.File != "" {
			p, err := input.LoadPlan(fc.Plan)
			if err != nil {
				return nil, fmt.Errorf("fab %s: %w", fc.Name, err)
			}
			plan = p
		}
		f, err := fab.New(uint8(i), fc, rc, mapData, plan, co.fatals)
		if err != nil {
			return nil, err
		}
		co.fabs = append(co.fabs, f)
		co.byName[fc.Name] = f
	}

	co.view = newRenderView(
		lo.Map(co.fabs, func(f *fab.Fab, _ int) string { return f.Name() }),
		lo.Map(co.fabs, func(f *fab.Fab, _ int) int { return f.RenderCapacity() }),
	)

	co.workers = resolveWorkers(rc.C.Workers, len(co.fabs))
	for i, f := range co.fabs {
		f.SetWorkerID(uint8(i % co.workers))
	}
	log.Infof("coordinator: %d fabs on %d workers, render view %d slots",
		len(co.fabs), co.workers, co.view.Slots())
	return co, nil
}

// resolveWorkers 解析工作线程数
// 说明：0按硬件并发度解析；线程数不超过Fab数（单Fab单线程推进）
func resolveWorkers(configured, fabCount int) int {
	w := configured
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > fabCount {
		w = fabCount
	}
	if w < 1 {
		w = 1
	}
	return w
}

// View 获取合成渲染视图
func (co *Coordinator) View() *RenderView {
	return co.view
}

// Fabs 获取全部Fab（检查面板用，可变状态仍只能由工作线程访问）
func (co *Coordinator) Fabs() []*fab.Fab {
	return co.fabs
}

// Events 获取致命事件汇聚通道
func (co *Coordinator) Events() <-chan entity.FatalEvent {
	return co.fatals
}

// Statuses 获取全部Fab的运行状态
func (co *Coordinator) Statuses() map[string]fab.Status {
	return lo.SliceToMap(co.fabs, func(f *fab.Fab) (string, fab.Status) {
		return f.Name(), f.Status()
	})
}

// SendCommand 向指定Fab投递一条指令
// 参数：fabName-目标Fab名，payload-JSON编码的指令负载
func (co *Coordinator) SendCommand(fabName string, payload []byte) error {
	f, ok := co.byName[fabName]
	if !ok {
		return fmt.Errorf("no fab %s", fabName)
	}
	return f.Enqueue(payload)
}

// Start 启动全部Fab与工作线程
// 说明：每个工作线程以固定节拍轮流推进分配给它的Fab，
// 并在每个tick之后将渲染缓冲发布到合成视图
func (co *Coordinator) Start() error {
	for _, f := range co.fabs {
		if err := f.Start(); err != nil {
			return err
		}
	}
	for w := 0; w < co.workers; w++ {
		var assigned []int
		for i := range co.fabs {
			if i%co.workers == w {
				assigned = append(assigned, i)
			}
		}
		co.wg.Add(1)
		go co.runWorker(w, assigned)
	}
	return nil
}

// runWorker 工作线程主循环
// 参数：id-线程ID，assigned-分配给本线程的Fab下标
// 说明：所有分配的Fab均进入终态（stopped/failed）后线程退出
func (co *Coordinator) runWorker(id int, assigned []int) {
	defer co.wg.Done()
	interval := time.Duration(co.cfg.C.Step.Interval * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Infof("worker %d: %d fabs, tick %v", id, len(assigned), interval)
	for {
		select {
		case <-co.stopCh:
			return
		case <-ticker.C:
			alive := false
			for _, i := range assigned {
				f := co.fabs[i]
				f.Tick()
				co.view.publish(i, f.Render(), f.RenderSlots())
				if s := f.Status(); s == fab.StatusRunning || s == fab.StatusPaused {
					alive = true
				}
			}
			if !alive {
				log.Infof("worker %d: all fabs finished", id)
				return
			}
		}
	}
}

// StepAll 同步推进全部Fab一个tick并发布渲染
// 说明：批处理运行与测试用，不得与Start启动的工作线程并用
func (co *Coordinator) StepAll() {
	for i, f := range co.fabs {
		f.Tick()
		co.view.publish(i, f.Render(), f.RenderSlots())
	}
}

// Pause 暂停全部Fab
// 说明：工作线程继续空转，指令继续排队
func (co *Coordinator) Pause() {
	for _, f := range co.fabs {
		f.Pause()
	}
}

// Resume 恢复全部已暂停的Fab
func (co *Coordinator) Resume() {
	for _, f := range co.fabs {
		if f.Status() == fab.StatusPaused {
			if err := f.Start(); err != nil {
				log.Warnf("resume %s: %v", f.Name(), err)
			}
		}
	}
}

// Wait 等待全部工作线程退出
func (co *Coordinator) Wait() {
	co.wg.Wait()
}

// Dispose 停止全部工作线程并释放资源
func (co *Coordinator) Dispose() {
	if !co.stopped.CompareAndSwap(false, true) {
		return
	}
	close(co.stopCh)
	co.wg.Wait()
	for _, f := range co.fabs {
		if err := f.Close(); err != nil {
			log.Warnf("close %s: %v", f.Name(), err)
		}
	}
	log.Infof("coordinator disposed")
}
