package presenter

import (
	"github.com/fazamuttaqien/slotbook/internal/controller"
)

type Presenter struct {
	Controllers *controller.Controller
}

func New(deps controller.Deps) Presenter {
	return Presenter{
		Controllers: controller.New(deps),
	}
}
