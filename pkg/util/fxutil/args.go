// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package fxutil

import (
	"reflect"

	"go.uber.org/fx"
)

var errorInterface = reflect.TypeOf((*error)(nil)).Elem()

// delayedFxInvocation captures the arguments of a function during the fx
// startup and calls the function later, once the app is started.
type delayedFxInvocation struct {
	fn    interface{}
	ftype reflect.Type
	args  []reflect.Value
}

func newDelayedFxInvocation(fn interface{}) *delayedFxInvocation {
	ftype := reflect.TypeOf(fn)
	if ftype == nil || ftype.Kind() != reflect.Func {
		panic("delayedFxInvocation requires a function as its first argument")
	}

	switch ftype.NumOut() {
	case 0:
	case 1:
		if !ftype.Out(0).Implements(errorInterface) {
			panic("delayedFxInvocation function must return error or nothing")
		}
	default:
		panic("delayedFxInvocation function must return error or nothing")
	}

	return &delayedFxInvocation{fn: fn, ftype: ftype}
}

// option returns an fx.Invoke capturing the arguments of the function
func (i *delayedFxInvocation) option() fx.Option {
	inTypes := make([]reflect.Type, i.ftype.NumIn())
	for n := range inTypes {
		inTypes[n] = i.ftype.In(n)
	}
	fnType := reflect.FuncOf(inTypes, []reflect.Type{}, false)
	fn := reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		i.args = args
		return []reflect.Value{}
	})
	return fx.Invoke(fn.Interface())
}

// call calls the function with the captured arguments
func (i *delayedFxInvocation) call() error {
	res := reflect.ValueOf(i.fn).Call(i.args)
	if len(res) > 0 {
		if err, ok := res[0].Interface().(error); ok {
			return err
		}
	}
	return nil
}
