package vkframe

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError converts a Vulkan result into an error carrying the caller's stack.
// Returns nil for vk.Success only. Status codes the loader does not treat as
// errors, like vk.Timeout, still come back as an error here.
func NewError(ret vk.Result) error {
	if !isError(ret) {
		return nil
	}
	if err := vk.Error(ret); err != nil {
		return errors.WithStack(err)
	}
	return errors.Errorf("vulkan: unexpected result %d", ret)
}

// wrapResult is NewError followed by a context message.
func wrapResult(ret vk.Result, msg string) error {
	return errors.Wrap(NewError(ret), msg)
}

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(error); ok {
			*err = e
			return
		}
		*err = fmt.Errorf("%+v", v)
	}
}
