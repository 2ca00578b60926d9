package services

import (
	"context"
	"time"

	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/dispatch"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/model"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/ports"
	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrNodeExists         = errors.New("node already exists")
	ErrNodeNotFound       = errors.New("node not found")
	ErrParentNotFound     = errors.New("parent node not found")
	ErrReferenceNotFound  = errors.New("reference not found")
	ErrUnknownReference   = errors.New("reference type has no standard node id")
	ErrAttributeProtected = errors.New("attribute is not writable")
)

// Type definitions reported as the affected type of a change.
var (
	FolderType           = model.NewNumericNodeID(0, 61)
	BaseDataVariableType = model.NewNumericNodeID(0, 63)
)

// VariableSpec describes a variable to create. A zero DataType is derived
// from Value; zero AccessLevel and WriteMask select the defaults. A slice
// Value, or Array set, makes a one-dimensional array variable.
type VariableSpec struct {
	NodeID                  model.NodeID
	BrowseName              model.QualifiedName
	DisplayName             string
	Description             string
	Value                   any
	DataType                model.DataType
	AccessLevel             model.AccessLevel
	WriteMask               model.WriteMask
	MinimumSamplingInterval float64
	Array                   bool
}

type nodeEntry struct {
	parent      model.NodeID
	browseName  model.QualifiedName
	typeDef     model.NodeID
	node        server.Node
	children    []model.NodeID
	dataType    model.DataType
	accessLevel model.AccessLevel
	writeMask   model.WriteMask
	array       bool
}

// AddressSpaceSvc maintains the nodes created by the bridge. It gates value
// writes with the node's access level and data type, and reports every
// structural mutation to the subscribed listeners through the deferred queue.
//
// All methods except the client write handler installed on variables must be
// called from the event loop goroutine.
type AddressSpaceSvc struct {
	store     ports.NodeStore
	loop      dispatch.Scheduler
	queue     *dispatch.Queue
	logger    *logrus.Logger
	entries   map[model.NodeID]*nodeEntry
	pending   model.ChangeBatch
	listeners []ports.ChangeListener
}

func NewAddressSpaceSvc(store ports.NodeStore, loop dispatch.Scheduler, queue *dispatch.Queue, logger *logrus.Logger) *AddressSpaceSvc {
	return &AddressSpaceSvc{
		store:   store,
		loop:    loop,
		queue:   queue,
		logger:  logger,
		entries: make(map[model.NodeID]*nodeEntry),
	}
}

func (s *AddressSpaceSvc) Subscribe(l ports.ChangeListener) {
	s.listeners = append(s.listeners, l)
}

// AddFolder creates an object organized by parent.
func (s *AddressSpaceSvc) AddFolder(parent, id model.NodeID, browseName model.QualifiedName, displayName string) error {
	if err := s.checkNew(parent, id); err != nil {
		return err
	}
	node := server.NewObjectNode(id.ToUA(),
		browseName.ToUA(),
		ua.LocalizedText{Text: displayName},
		ua.LocalizedText{},
		nil,
		[]ua.Reference{
			inverseReference(model.Organizes, parent),
			{
				ReferenceTypeID: model.HasTypeDefinition.NodeID(),
				TargetID:        ua.NewExpandedNodeID(FolderType.ToUA()),
			},
		},
		0,
	)
	if err := s.store.AddNode(node); err != nil {
		return errors.Wrapf(err, "adding folder %s", id)
	}
	s.track(parent, id, &nodeEntry{browseName: browseName, typeDef: FolderType, node: node})
	return nil
}

// AddVariable creates a variable as a component of parent.
func (s *AddressSpaceSvc) AddVariable(parent model.NodeID, spec VariableSpec) (*server.VariableNode, error) {
	if err := s.checkNew(parent, spec.NodeID); err != nil {
		return nil, err
	}
	entry := &nodeEntry{
		browseName:  spec.BrowseName,
		typeDef:     BaseDataVariableType,
		dataType:    spec.DataType,
		accessLevel: spec.AccessLevel,
		writeMask:   spec.WriteMask,
		array:       spec.Array || model.IsArray(spec.Value),
	}
	if entry.dataType == model.DataTypeUnknown {
		entry.dataType = model.KindOf(spec.Value)
	}
	if entry.accessLevel == 0 {
		entry.accessLevel = model.DefaultAccessLevel
	}
	if entry.writeMask == 0 {
		entry.writeMask = model.DefaultWriteMask
	}

	value := ua.DataValue{StatusCode: ua.BadWaitingForInitialData}
	if spec.Value != nil {
		v, kind := model.ToVariant(spec.Value)
		if !entry.dataType.Accepts(kind) || model.IsArray(spec.Value) != entry.array {
			return nil, errors.Wrapf(model.BadTypeMismatch, "initial value of %s is %s, want %s", spec.NodeID, kind, entry.dataType)
		}
		now := time.Now().UTC()
		value = ua.NewDataValue(v, ua.Good, now, 0, now, 0)
	}

	// array length is not fixed, writes may resize it
	valueRank, dims := ua.ValueRankScalar, []uint32{}
	if entry.array {
		valueRank, dims = ua.ValueRankOneDimension, []uint32{0}
	}

	node := server.NewVariableNode(
		spec.NodeID.ToUA(),
		spec.BrowseName.ToUA(),
		ua.LocalizedText{Text: spec.DisplayName},
		ua.LocalizedText{Text: spec.Description},
		nil,
		[]ua.Reference{
			inverseReference(model.HasComponent, parent),
			{
				ReferenceTypeID: model.HasTypeDefinition.NodeID(),
				TargetID:        ua.NewExpandedNodeID(BaseDataVariableType.ToUA()),
			},
		},
		value,
		entry.dataType.NodeID(),
		valueRank,
		dims,
		entry.accessLevel.ToUA(),
		spec.MinimumSamplingInterval,
		false,
		nil,
	)
	node.SetWriteValueHandler(s.clientWriteHandler(spec.NodeID))
	if err := s.store.AddNode(node); err != nil {
		return nil, errors.Wrapf(err, "adding variable %s", spec.NodeID)
	}
	entry.node = node
	s.track(parent, spec.NodeID, entry)
	return node, nil
}

// AddReference adds a forward reference from source to target and the
// matching inverse reference on target.
func (s *AddressSpaceSvc) AddReference(source, target model.NodeID, ref model.ReferenceType) error {
	refID := ref.NodeID()
	if refID == nil {
		return errors.Wrap(ErrUnknownReference, ref.String())
	}
	src, ok := s.store.FindNode(source.ToUA())
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "reference source %s", source)
	}
	dst, ok := s.store.FindNode(target.ToUA())
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "reference target %s", target)
	}
	forward := ua.Reference{ReferenceTypeID: refID, TargetID: ua.NewExpandedNodeID(target.ToUA())}
	if !hasReference(src.References(), forward) {
		src.SetReferences(append(src.References(), forward))
	}
	inverse := inverseReference(ref, source)
	if !hasReference(dst.References(), inverse) {
		dst.SetReferences(append(dst.References(), inverse))
	}
	s.recordChange(model.NewChangeStructure(source, s.typeOf(source), model.ReferenceAdded))
	return nil
}

// DeleteReference removes the forward reference and its inverse.
func (s *AddressSpaceSvc) DeleteReference(source, target model.NodeID, ref model.ReferenceType) error {
	refID := ref.NodeID()
	if refID == nil {
		return errors.Wrap(ErrUnknownReference, ref.String())
	}
	src, ok := s.store.FindNode(source.ToUA())
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "reference source %s", source)
	}
	forward := ua.Reference{ReferenceTypeID: refID, TargetID: ua.NewExpandedNodeID(target.ToUA())}
	refs, removed := withoutReference(src.References(), forward)
	if !removed {
		return errors.Wrapf(ErrReferenceNotFound, "%s %s %s", source, ref.ForwardName, target)
	}
	src.SetReferences(refs)
	if dst, ok := s.store.FindNode(target.ToUA()); ok {
		refs, _ := withoutReference(dst.References(), inverseReference(ref, source))
		dst.SetReferences(refs)
	}
	s.recordChange(model.NewChangeStructure(source, s.typeOf(source), model.ReferenceDeleted))
	return nil
}

// DeleteNode removes a node created by this service together with its
// descendants. Descendants are reported first, deepest first.
func (s *AddressSpaceSvc) DeleteNode(id model.NodeID) error {
	entry, ok := s.entries[id]
	if !ok {
		return errors.Wrap(ErrNodeNotFound, id.String())
	}
	if p, ok := s.entries[entry.parent]; ok {
		p.children = removeID(p.children, id)
	}
	return s.deleteSubtree(id, entry)
}

func (s *AddressSpaceSvc) deleteSubtree(id model.NodeID, entry *nodeEntry) error {
	for _, child := range entry.children {
		if err := s.deleteSubtree(child, s.entries[child]); err != nil {
			return err
		}
	}
	if err := s.store.DeleteNode(entry.node, false); err != nil {
		return errors.Wrapf(err, "deleting node %s", id)
	}
	delete(s.entries, id)
	s.recordChange(model.NewChangeStructure(id, entry.typeDef, model.NodeDeleted))
	return nil
}

// WriteValue publishes a value from inside the bridge. The access level is
// not consulted, the data type is.
func (s *AddressSpaceSvc) WriteValue(id model.NodeID, v any) model.StatusCode {
	entry, node, code := s.variable(id)
	if code.IsBad() {
		return code
	}
	variant, kind := model.ToVariant(v)
	if !entry.dataType.Accepts(kind) || model.IsArray(v) != entry.array {
		return model.BadTypeMismatch
	}
	now := time.Now().UTC()
	node.SetValue(ua.NewDataValue(variant, ua.Good, now, 0, now, 0))
	return model.Good
}

// ClientWrite validates a value written by a client. On Good the returned
// DataValue is what the server stores.
func (s *AddressSpaceSvc) ClientWrite(id model.NodeID, v ua.DataValue) (ua.DataValue, model.StatusCode) {
	entry, _, code := s.variable(id)
	if code.IsBad() {
		return ua.DataValue{}, code
	}
	if !entry.accessLevel.CanWrite() {
		return ua.DataValue{}, model.BadNotWritable
	}
	value, kind := model.FromVariant(v.Value)
	if !entry.dataType.Accepts(kind) || model.IsArrayVariant(v.Value) != entry.array {
		s.logger.WithFields(logrus.Fields{
			"category": "server",
			"NodeId":   id.String(),
			"Got":      kind.String(),
			"Want":     entry.dataType.String(),
		}).Debugln("Rejected client write 🔔")
		return ua.DataValue{}, model.BadTypeMismatch
	}
	variant, _ := model.ToVariant(value)
	now := time.Now().UTC()
	srcTs := v.SourceTimestamp
	if srcTs.IsZero() {
		srcTs = now
	}
	return ua.NewDataValue(variant, ua.Good, srcTs, 0, now, 0), model.Good
}

// clientWriteHandler runs ClientWrite on the event loop and waits for it.
// Partial writes through an index range are not supported.
func (s *AddressSpaceSvc) clientWriteHandler(id model.NodeID) func(context.Context, ua.WriteValue) (ua.DataValue, ua.StatusCode) {
	type result struct {
		value ua.DataValue
		code  model.StatusCode
	}
	return func(ctx context.Context, wv ua.WriteValue) (ua.DataValue, ua.StatusCode) {
		if wv.IndexRange != "" {
			return ua.DataValue{}, model.BadIndexRangeInvalid.ToUA()
		}
		done := make(chan result, 1)
		s.loop.Post(func() {
			value, code := s.ClientWrite(id, wv.Value)
			done <- result{value, code}
		})
		select {
		case r := <-done:
			return r.value, r.code.ToUA()
		case <-ctx.Done():
			return ua.DataValue{}, model.BadTimeout.ToUA()
		case <-s.loop.Done():
			return ua.DataValue{}, model.BadTimeout.ToUA()
		}
	}
}

// SetDataType changes the DataType attribute of a variable. The node is
// rebuilt because the server keeps the attribute immutable; a value the new
// type cannot hold is dropped.
func (s *AddressSpaceSvc) SetDataType(id model.NodeID, k model.DataType) error {
	entry, old, code := s.variable(id)
	if code.IsBad() {
		return errors.Wrap(ErrNodeNotFound, id.String())
	}
	if !entry.writeMask.Has(model.WriteMaskDataType) {
		return errors.Wrapf(ErrAttributeProtected, "DataType of %s", id)
	}
	if entry.dataType == k {
		return nil
	}
	value := old.Value()
	if _, kind := model.FromVariant(value.Value); value.Value == nil || !k.Accepts(kind) {
		value = ua.DataValue{StatusCode: ua.BadWaitingForInitialData}
	}
	node := server.NewVariableNode(
		old.NodeID(),
		old.BrowseName(),
		old.DisplayName(),
		old.Description(),
		old.RolePermissions(),
		old.References(),
		value,
		k.NodeID(),
		old.ValueRank(),
		old.ArrayDimensions(),
		old.AccessLevel(),
		old.MinimumSamplingInterval(),
		false,
		nil,
	)
	node.SetWriteValueHandler(s.clientWriteHandler(id))
	if err := s.store.DeleteNode(old, false); err != nil {
		return errors.Wrapf(err, "replacing node %s", id)
	}
	if err := s.store.AddNode(node); err != nil {
		if restoreErr := s.store.AddNode(old); restoreErr != nil {
			s.logger.WithFields(logrus.Fields{
				"category": "server",
				"NodeId":   id.String(),
				"Err":      restoreErr,
			}).Errorln("Failed to restore node ⛔")
		}
		return errors.Wrapf(err, "replacing node %s", id)
	}
	entry.node = node
	entry.dataType = k
	s.recordChange(model.NewChangeStructure(id, entry.typeDef, model.DataTypeChanged))
	return nil
}

// DataType returns the data type the bridge enforces for a variable.
func (s *AddressSpaceSvc) DataType(id model.NodeID) (model.DataType, bool) {
	entry, ok := s.entries[id]
	if !ok {
		return model.DataTypeUnknown, false
	}
	return entry.dataType, true
}

// BrowsePath renders the browse names from the topmost tracked ancestor
// down to id, or "" when id is not tracked.
func (s *AddressSpaceSvc) BrowsePath(id model.NodeID) string {
	var path []model.QualifiedName
	for entry, ok := s.entries[id]; ok; entry, ok = s.entries[entry.parent] {
		path = append(path, entry.browseName)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return model.ReduceBrowsePath(path)
}

// Pending returns the changes not yet delivered to listeners.
func (s *AddressSpaceSvc) Pending() []model.ChangeStructure {
	return s.pending.Changes()
}

func (s *AddressSpaceSvc) checkNew(parent, id model.NodeID) error {
	if _, ok := s.store.FindNode(id.ToUA()); ok {
		return errors.Wrap(ErrNodeExists, id.String())
	}
	if _, ok := s.store.FindNode(parent.ToUA()); !ok {
		return errors.Wrapf(ErrParentNotFound, "parent %s of %s", parent, id)
	}
	return nil
}

func (s *AddressSpaceSvc) track(parent, id model.NodeID, entry *nodeEntry) {
	entry.parent = parent
	s.entries[id] = entry
	if p, ok := s.entries[parent]; ok {
		p.children = append(p.children, id)
	}
	s.logger.WithFields(logrus.Fields{
		"category": "server",
		"NodeId":   id.String(),
		"Path":     s.BrowsePath(id),
	}).Debugln("Node added 🔔")

	s.recordChange(model.NewChangeStructure(id, entry.typeDef, model.NodeAdded))
	node := entry.node
	s.queue.ExecLater(func() {
		for _, l := range s.listeners {
			l.OnNewInstance(node)
		}
	})
}

// recordChange appends to the pending batch. The first change of a batch
// schedules its delivery; later ones ride along.
func (s *AddressSpaceSvc) recordChange(c model.ChangeStructure) {
	s.pending.Add(c)
	if s.pending.Len() == 1 {
		s.queue.ExecLater(s.flushChanges)
	}
}

func (s *AddressSpaceSvc) flushChanges() {
	changes := s.pending.Take()
	if len(changes) == 0 {
		return
	}
	for _, l := range s.listeners {
		l.OnModelChange(changes)
	}
}

func (s *AddressSpaceSvc) typeOf(id model.NodeID) model.NodeID {
	if entry, ok := s.entries[id]; ok {
		return entry.typeDef
	}
	return model.NullNodeID
}

func (s *AddressSpaceSvc) variable(id model.NodeID) (*nodeEntry, *server.VariableNode, model.StatusCode) {
	entry, ok := s.entries[id]
	if !ok {
		return nil, nil, model.BadNodeIdUnknown
	}
	node, ok := entry.node.(*server.VariableNode)
	if !ok {
		return nil, nil, model.BadNodeIdUnknown
	}
	return entry, node, model.Good
}

func inverseReference(ref model.ReferenceType, target model.NodeID) ua.Reference {
	return ua.Reference{
		ReferenceTypeID: ref.NodeID(),
		IsInverse:       true,
		TargetID:        ua.NewExpandedNodeID(target.ToUA()),
	}
}

func hasReference(refs []ua.Reference, r ua.Reference) bool {
	_, found := withoutReference(refs, r)
	return found
}

func withoutReference(refs []ua.Reference, r ua.Reference) ([]ua.Reference, bool) {
	out := make([]ua.Reference, 0, len(refs))
	found := false
	for _, e := range refs {
		if e.ReferenceTypeID == r.ReferenceTypeID && e.IsInverse == r.IsInverse && e.TargetID.NodeID == r.TargetID.NodeID {
			found = true
			continue
		}
		out = append(out, e)
	}
	return out, found
}

func removeID(ids []model.NodeID, id model.NodeID) []model.NodeID {
	out := ids[:0]
	for _, e := range ids {
		if e != id {
			out = append(out, e)
		}
	}
	return out
}
