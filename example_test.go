package viewdispatcher_test

import (
	"context"
	"fmt"

	"github.com/joeycumines/go-viewdispatcher"
	"github.com/joeycumines/go-viewdispatcher/gui"
	"github.com/joeycumines/go-viewdispatcher/record"
)

func Example() {
	if _, err := gui.Provide(record.Default()); err != nil {
		panic(err)
	}

	x, err := viewdispatcher.New(viewdispatcher.TypeFullscreen, viewdispatcher.HandlerFuncs{
		CustomEvent: func(d *viewdispatcher.Dispatcher, event uint32) bool {
			fmt.Println(`custom event:`, event)
			if event == 2 {
				d.Stop()
			}
			return true
		},
	})
	if err != nil {
		panic(err)
	}
	defer x.Close()

	x.SendCustomEvent(1)
	x.SendCustomEvent(2)
	x.SendCustomEvent(3)

	if err := x.Run(context.Background()); err != nil {
		panic(err)
	}

	fmt.Println(`capabilities:`, x.Capabilities())

	//output:
	//custom event: 1
	//custom event: 2
	//capabilities: CustomEvent
}
