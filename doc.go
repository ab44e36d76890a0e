// Package schedule 计算周期任务的下一次触发时间，并提供一个轻量的任务 Agenda
//
// 解析调度:
//
//	s, err := schedule.Parse("0 30 9 * * 1-5") // 工作日 09:30:00
//	next, ok := s.Next(time.Time{})           // 严格晚于当前时间
//
//	every, _ := schedule.Every(90 * time.Second)
//	daily := schedule.MustParse("@daily")
//
// 表达式格式:
//
//	秒 分 时 日 月 周
//	分 时 日 月 周          // 秒为 0
//
//	*              任意值
//	7              单个值
//	1-5            闭区间
//	0,15,30-35     列表
//
// 星期 0 与 7 都表示周日。同时限定日和星期时两者是“或”的关系，
// 例如 "0 0 0 1 * 1" 在每月 1 日和每个周一触发。
// 所有计算都在 UTC 下进行；2 年内找不到触发时间时 Next 返回 false。
//
// 任务 Agenda:
//
//	agenda := schedule.New(schedule.WithLogger(schedule.NewDefaultLogger()))
//
//	_, err := agenda.AddFunc(func(ctx context.Context) error {
//	    fmt.Println("当前时间:", time.Now())
//	    return nil
//	}, schedule.MustParse("0,30 * * * * *"), schedule.WithName("print-time"))
//
//	agenda.Start(ctx)
//	defer agenda.Stop()
//
// 也可以不启动轮询，由调用方驱动:
//
//	for agenda.IsPending() {
//	    agenda.RunPending(ctx)
//	}
//
// 句柄在任务移除后失效，之后的 Pause、Resume、Reschedule 返回 ErrJobNotFound。
package schedule
