// Package bridge drives an XML Schema validation engine that runs inside a
// host runtime the caller does not control.
//
// A SchemaValidator is attached to a processor.Processor. Callers set
// parameters and properties, invoke one of the validator operations, and then
// poll the diagnostics surface: host faults are captured into an exception
// snapshot and never returned as Go errors. The operations return errors only
// for missing arguments and for entry points the host does not provide.
//
//	rt, _ := inproc.NewRuntime(inproc.WithClass(engineClass))
//	proc, _ := processor.New(ctx, rt, processor.WithResourcesDirectory("/opt/xsd"))
//	v, _ := bridge.NewSchemaValidator(ctx, proc)
//	defer v.Close(ctx)
//
//	_ = v.RegisterSchemaFromFile(ctx, "order.xsd")
//	v.SetParameter(ctx, "strict", xdm.NewBool(true))
//	_ = v.Validate(ctx, "order.xml")
//	if v.ExceptionOccurred(ctx) {
//	    for i := 0; i < v.ExceptionCount(); i++ {
//	        code, _ := v.GetErrorCode(i)
//	        msg, _ := v.GetErrorMessage(i)
//	        fmt.Println(code, msg)
//	    }
//	}
package bridge
