// Package provision applies a YAML inventory of devices, sensors and
// actuators at startup.
//
// Entries are keyed by ID. Anything that already exists is left alone, so
// the same inventory can be applied on every start.
//
//	inv, err := provision.LoadInventory(cfg.Provisioning.File)
//	if err != nil {
//	    return err
//	}
//	res, err := provision.New(devices, svc).Apply(ctx, inv)
package provision
